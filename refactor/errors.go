// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"

	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

var (
	// ErrUnmatchedBinding is matched by a BindingError.
	ErrUnmatchedBinding = errors.New("unmatched binding")

	// ErrUnresolvedInsertionPoint is matched by an InsertionError.
	ErrUnresolvedInsertionPoint = errors.New("unresolved insertion point")
)

// A BindingError reports a match that lacks an expected bound node.
// The match is skipped; the pass continues.
type BindingError struct {
	Pos  token.Position
	Slot string
}

func (e *BindingError) msg() string {
	return fmt.Sprintf("match has no node bound to %q", e.Slot)
}

func (e *BindingError) Error() string { return withPos(e.Pos, e.msg()) }

func (e *BindingError) Is(target error) bool { return target == ErrUnmatchedBinding }

// An InsertionError reports that no insertion point could be found
// in a call or declaration. No edit is produced for it.
type InsertionError struct {
	Pos    token.Position
	Func   string // qualified name of the target
	Reason string
}

func (e *InsertionError) msg() string {
	return fmt.Sprintf("cannot insert into %s: %s", e.Func, e.Reason)
}

func (e *InsertionError) Error() string { return withPos(e.Pos, e.msg()) }

func (e *InsertionError) Is(target error) bool { return target == ErrUnresolvedInsertionPoint }

func withPos(pos token.Position, msg string) string {
	if pos.IsValid() {
		return fmt.Sprintf("%s: %s", pos, msg)
	}
	return msg
}

// An Error is an error at a particular source position. It may have attached
// errors at other positions (but those must not have secondary errors).
type Error struct {
	Pos token.Position
	Msg string

	Secondary []*Error
}

func (e *Error) Error() string {
	return withPos(e.Pos, e.Msg)
}

type errorKey struct {
	pos token.Position
	msg string
}

// ErrorList is a set of Errors. It is also an error itself. The zero value is
// an empty list, ready to use.
type ErrorList struct {
	errs []*Error
	set  map[errorKey]bool
}

// Add adds an error to l. Binding, insertion, and edit conflict errors keep
// their positions; a ConflictError gets the earlier edit as a secondary error.
// An ErrorList is merged into l. Any other error is added with no position.
// Duplicate errors (same position and message) are suppressed.
func (l *ErrorList) Add(err error) {
	var e *Error

	switch err := err.(type) {
	case nil:
		return

	case *ErrorList:
		for _, e := range err.errs {
			l.Add(e)
		}
		return

	case *Error:
		e = err

	case *BindingError:
		e = &Error{Pos: err.Pos, Msg: err.msg()}

	case *InsertionError:
		e = &Error{Pos: err.Pos, Msg: err.msg()}

	case *program.ParseError:
		e = &Error{Pos: token.Position{Filename: err.File}, Msg: err.Error()}

	default:
		e = &Error{Msg: err.Error()}
	}

	k := errorKey{e.Pos, e.Msg}
	if !l.set[k] {
		if l.set == nil {
			l.set = make(map[errorKey]bool)
		}
		l.errs = append(l.errs, e)
		l.set[k] = true
	}
}

// AddConflict adds a conflict between two edits at their positions in p.
func (l *ErrorList) AddConflict(p program.Program, c *edit.ConflictError) {
	l.Add(&Error{
		Pos: program.Position(p, c.New.File, c.New.Offset),
		Msg: fmt.Sprintf("conflicting edit %s", c.New),
		Secondary: []*Error{{
			Pos: program.Position(p, c.Existing.File, c.Existing.Offset),
			Msg: fmt.Sprintf("overlaps %s", c.Existing),
		}},
	})
}

// Len returns the number of errors in l.
func (l *ErrorList) Len() int { return len(l.errs) }

// Error sorts, deduplicates, and returns a "\n" separated list of formatted
// errors. Note that the result does not end in "\n" because the caller is
// expected to add that.
func (l *ErrorList) Error() string {
	if len(l.errs) == 0 {
		return "no errors"
	}

	sort.SliceStable(l.errs, func(i, j int) bool {
		p1, p2 := l.errs[i].Pos, l.errs[j].Pos
		if p1.Filename != p2.Filename {
			return p1.Filename < p2.Filename
		}
		return p1.Offset < p2.Offset
	})

	// Collapse duplicate messages that appear in many locations on the
	// assumption that one bad target amplified some issue and the user
	// doesn't want to be flooded.
	count := make(map[string]int)
	for _, e := range l.errs {
		count[e.Msg]++
	}

	buf := new(strings.Builder)
	for _, e := range l.errs {
		msg := e.Msg
		switch {
		case count[msg] > 3:
			n := count[e.Msg]
			count[e.Msg] = -1
			msg += fmt.Sprintf(" [× %d]", n)

		case count[msg] < 0:
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(withPos(e.Pos, msg))
		for _, e2 := range e.Secondary {
			fmt.Fprintf(buf, "\n\t%s", e2)
		}
	}
	return buf.String()
}

// Err returns an error equivalent to this error list.
// If the list is empty, Err returns nil.
func (l *ErrorList) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l
}
