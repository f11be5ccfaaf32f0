// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"bytes"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLoc(t *testing.T) {
	var st LocState
	pos := func(file string, line, col int) token.Position {
		return token.Position{Filename: file, Line: line, Column: col}
	}
	assert.Equal(t, "a.cc:1:5", FormatLoc(&st, pos("a.cc", 1, 5)))
	assert.Equal(t, "col:9", FormatLoc(&st, pos("a.cc", 1, 9)))
	assert.Equal(t, "line:3:2", FormatLoc(&st, pos("a.cc", 3, 2)))
	assert.Equal(t, "b.h:3:2", FormatLoc(&st, pos("b.h", 3, 2)))
	assert.Equal(t, "<invalid loc>", FormatLoc(&st, token.Position{}))
	assert.Equal(t, LocState{File: "b.h", Line: 3}, st)

	// Independent states do not affect each other.
	var other LocState
	assert.Equal(t, "b.h:3:2", FormatLoc(&other, pos("b.h", 3, 2)))
}

func TestFormatRange(t *testing.T) {
	p := build(t, "void f(){return;}\nvoid g(){f(); return;}")
	c := p.Calls()[0]
	var st LocState
	assert.Equal(t, "<input.cc:2:10, col:13>", FormatRange(&st, p, c.Span))
	assert.Equal(t, "<col:10, col:13>", FormatRange(&st, p, c.Span))
	assert.Equal(t, "<line:1:1, col:18>", FormatRange(&st, p, p.Funcs()[0].Span))
}

func TestReporter(t *testing.T) {
	p := build(t, "void f(){return;}\nvoid g(){f(); return;}")
	var buf bytes.Buffer
	r := NewReporter(&buf, p, true)
	r.Node("call", p.Calls()[0])
	r.Tracef("n=%d", 1)
	r.Warn(&BindingError{Slot: "callee"})
	assert.Equal(t, "call <input.cc:2:10, col:13>\nn=1\nwarning: match has no node bound to \"callee\"\n", buf.String())

	buf.Reset()
	quiet := NewReporter(&buf, p, false)
	quiet.Node("call", p.Calls()[0])
	quiet.Tracef("hidden")
	assert.Empty(t, buf.String())

}
