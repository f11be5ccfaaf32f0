// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

// InsertArg returns the edit that adds text as a new argument to call c
// of function f. The argument goes after the last argument the call must
// supply and before the first default the call leaves unsupplied, so
// defaulted and variadic arguments keep their meaning.
//
// The rules, first match wins:
//
//   - no arguments: insert text before the closing parenthesis;
//   - f has a default the call does not supply: insert ", "+text after the
//     argument before that parameter, or text alone if there is none;
//   - the call passes arguments to f's variadic parameter: insert text+", "
//     before the first of them;
//   - otherwise: append ", "+text after the last argument.
//
// If no insertion point can be found, InsertArg returns an *InsertionError.
func InsertArg(p program.Program, c *program.Call, f *program.Func, text string) (edit.Edit, error) {
	file := c.Span.File
	fail := func(reason string) (edit.Edit, error) {
		return edit.Edit{}, &InsertionError{
			Pos:    program.Position(p, file, c.Span.Start),
			Func:   qualifiedName(f, c.Name),
			Reason: reason,
		}
	}
	if c.Rparen < 0 {
		return fail("call has no closing parenthesis")
	}
	nargs := len(c.Args)
	for _, a := range c.Args {
		if !a.IsValid() || a.File != file {
			return fail("call has an argument without a source range")
		}
	}

	var e edit.Edit
	switch i, v := firstUnmetDefault(f, nargs), variadicIndex(f); {
	case nargs == 0:
		e = edit.Insert(file, c.Rparen, text)
	case i >= 0:
		if i-1 >= nargs {
			return fail("call supplies fewer arguments than the parameters before the first default")
		}
		e = edit.Insert(file, c.Args[i-1].End, ", "+text)
	case v >= 0 && v < nargs:
		e = edit.Insert(file, c.Args[v].Start, text+", ")
	default:
		e = edit.Insert(file, c.Args[nargs-1].End, ", "+text)
	}
	if e.Offset < c.Span.Start || e.Offset > c.Rparen || e.Offset > c.Span.End {
		return fail("insertion point falls outside the call")
	}
	return e, nil
}

// firstUnmetDefault returns the index of the first parameter of f that has
// a default and lies beyond the nargs arguments supplied, or -1.
// Every defaulted parameter is a candidate, not only the first.
func firstUnmetDefault(f *program.Func, nargs int) int {
	if f == nil {
		return -1
	}
	for i, p := range f.Params {
		if p.Default != "" && i >= nargs {
			return i
		}
	}
	return -1
}

func variadicIndex(f *program.Func) int {
	if f == nil {
		return -1
	}
	return f.VariadicIndex()
}

func qualifiedName(f *program.Func, fallback string) string {
	if f == nil {
		return fallback
	}
	return f.QualifiedName()
}

// InsertParam returns the edit that adds text as a new parameter of f.
// The parameter goes before the first defaulted or variadic parameter,
// so it is required and existing calls that rely on defaults stay valid,
// or after the last parameter if there is none of either.
// An empty parameter list gets text alone.
//
// A parameter list written (void) has no insertion point:
// InsertParam returns an *InsertionError rather than guess.
func InsertParam(p program.Program, f *program.Func, text string) (edit.Edit, error) {
	file := f.Span.File
	fail := func(reason string) (edit.Edit, error) {
		return edit.Edit{}, &InsertionError{
			Pos:    program.Position(p, file, f.NameSpan.Start),
			Func:   f.QualifiedName(),
			Reason: reason,
		}
	}
	if f.Lparen < 0 || f.Rparen < 0 {
		return fail("declaration has no parameter list")
	}
	if f.Void {
		return fail("parameter list is (void)")
	}
	if len(f.Params) == 0 {
		return edit.Insert(file, f.Lparen+1, text), nil
	}
	for _, prm := range f.Params {
		if !prm.Span.IsValid() || prm.Span.File != file {
			return fail("parameter without a source range")
		}
	}
	if i := f.FirstDefault(); i >= 0 {
		return edit.Insert(file, f.Params[i].Span.Start, text+", "), nil
	}
	if v := f.VariadicIndex(); v >= 0 {
		return edit.Insert(file, f.Params[v].Span.Start, text+", "), nil
	}
	return edit.Insert(file, f.Params[len(f.Params)-1].Span.End, ", "+text), nil
}
