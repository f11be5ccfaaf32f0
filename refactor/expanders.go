// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

// A CallsiteExpander adds an argument to every call of the targets,
// through a plain name or through an object.
type CallsiteExpander struct{}

func (CallsiteExpander) Patterns(target string) []program.Matcher {
	return []program.Matcher{FreeCallPattern(target), BoundCallPattern(target)}
}

func (CallsiteExpander) DeclSlot() string { return SlotCallee }

func (CallsiteExpander) Edit(p program.Program, b program.Binding, text string) (edit.Edit, error) {
	c := b.Call(SlotCallsite)
	if c == nil {
		return edit.Edit{}, &BindingError{Pos: firstPos(p, b), Slot: SlotCallsite}
	}
	return InsertArg(p, c, b.Func(SlotCallee), text)
}

// A SignatureExpander adds a parameter to every declaration of the targets,
// free functions and methods alike.
type SignatureExpander struct{}

func (SignatureExpander) Patterns(target string) []program.Matcher {
	return []program.Matcher{FuncDeclPattern(target), MethodDeclPattern(target)}
}

func (SignatureExpander) DeclSlot() string { return SlotDecl }

func (SignatureExpander) Edit(p program.Program, b program.Binding, text string) (edit.Edit, error) {
	f := b.Func(SlotDecl)
	if f == nil {
		return edit.Edit{}, &BindingError{Pos: firstPos(p, b), Slot: SlotDecl}
	}
	return InsertParam(p, f, text)
}

// NewExpander returns a CallsiteExpander and a SignatureExpander
// generator for spec, sharing one set of edits (and, in a dry run,
// one scratch set). Run them together with Run.
func NewExpander(spec TargetSpec, callText string, opts ...Option) (sig, calls *Generator) {
	opts = append(opts, WithSets(make(edit.Sets)), withScratch(make(edit.Sets)))
	sig = NewGenerator(SignatureExpander{}, spec, opts...)
	cspec := spec
	cspec.NewText = callText
	calls = NewGenerator(CallsiteExpander{}, cspec, opts...)
	return sig, calls
}
