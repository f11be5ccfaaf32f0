// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"fmt"
	"go/token"
	"io"

	"rsc.io/xpnd/program"
)

// A LocState is the last location printed by FormatLoc or FormatRange.
// Locations on the same file and line are abbreviated against it.
// The zero value has printed nothing.
type LocState struct {
	File string
	Line int
}

// FormatLoc formats pos as file:line:col when the file differs from the
// last location printed, as line:L:C when only the line differs, and as
// col:C otherwise, and records pos in st.
func FormatLoc(st *LocState, pos token.Position) string {
	if !pos.IsValid() {
		return "<invalid loc>"
	}
	var s string
	switch {
	case pos.Filename != st.File:
		s = fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
	case pos.Line != st.Line:
		s = fmt.Sprintf("line:%d:%d", pos.Line, pos.Column)
	default:
		s = fmt.Sprintf("col:%d", pos.Column)
	}
	st.File = pos.Filename
	st.Line = pos.Line
	return s
}

// FormatRange formats r as <start, end>, abbreviating both ends as
// FormatLoc does. The end is the position just past the range.
func FormatRange(st *LocState, p program.Program, r program.Range) string {
	start := FormatLoc(st, program.Position(p, r.File, r.Start))
	end := FormatLoc(st, program.Position(p, r.File, r.End))
	return "<" + start + ", " + end + ">"
}

// A Reporter writes the diagnostics of one pass to w.
type Reporter struct {
	w       io.Writer
	p       program.Program
	verbose bool
	loc     LocState
}

// NewReporter returns a Reporter for program p.
// Trace output is written only if verbose is set.
func NewReporter(w io.Writer, p program.Program, verbose bool) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, p: p, verbose: verbose}
}

// Warn reports err, which does not stop the pass.
func (r *Reporter) Warn(err error) {
	fmt.Fprintf(r.w, "warning: %v\n", err)
}

// Tracef prints a verbose trace line.
func (r *Reporter) Tracef(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.w, format+"\n", args...)
	}
}

// Node prints a verbose trace line describing n and its location.
func (r *Reporter) Node(what string, n program.Node) {
	if r.verbose {
		fmt.Fprintf(r.w, "%s %s\n", what, FormatRange(&r.loc, r.p, n.Range()))
	}
}
