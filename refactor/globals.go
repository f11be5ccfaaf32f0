// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"fmt"

	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

// A VarPair names a global variable and the expression
// that replaces references to it.
type VarPair struct {
	Old, New string
}

// NewVarPairs pairs olds[i] with news[i].
func NewVarPairs(olds, news []string) ([]VarPair, error) {
	if len(olds) != len(news) {
		return nil, fmt.Errorf("%d global variables but %d replacements", len(olds), len(news))
	}
	pairs := make([]VarPair, len(olds))
	for i := range olds {
		pairs[i] = VarPair{olds[i], news[i]}
	}
	return pairs, nil
}

// A varReplacer rewrites references to global variables.
// Scoping is the program model's job: a reference to a local that
// shadows a global never resolves to the global.
type varReplacer struct {
	repl map[string]string
}

// NewVarReplacer returns a Generator that replaces each reference,
// inside a function, to a global variable pair.Old with pair.New.
func NewVarReplacer(pairs []VarPair, dryRun bool, opts ...Option) *Generator {
	x := varReplacer{repl: make(map[string]string, len(pairs))}
	names := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		x.repl[pair.Old] = pair.New
		names = append(names, pair.Old)
	}
	return NewGenerator(x, TargetSpec{Names: Targets(names...), DryRun: dryRun}, opts...)
}

func (varReplacer) Patterns(target string) []program.Matcher {
	return []program.Matcher{GlobalRefPattern(target)}
}

func (varReplacer) DeclSlot() string { return SlotGlobalVar }

func (x varReplacer) Edit(p program.Program, b program.Binding, _ string) (edit.Edit, error) {
	r := b.Ref(SlotGlobalRef)
	if r == nil {
		return edit.Edit{}, &BindingError{Pos: firstPos(p, b), Slot: SlotGlobalRef}
	}
	return edit.Replace(r.Span.File, r.Span.Start, r.Span.End, x.repl[r.Name]), nil
}
