// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"sort"

	"github.com/go-analyze/bulk"

	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

// A TargetSpec says what a Generator acts on. It does not change during a run.
type TargetSpec struct {
	Names   map[string]struct{} // target function or variable names
	NewText string              // text to insert
	DryRun  bool                // report edits without keeping them
	Verbose bool                // trace every match
}

// Targets returns the set of names, for TargetSpec.Names.
func Targets(names ...string) map[string]struct{} {
	return bulk.SliceToSet(names)
}

// An Expander computes one kind of edit for a Generator.
type Expander interface {
	// Patterns returns the queries that find candidate matches for target.
	Patterns(target string) []program.Matcher

	// DeclSlot is the slot each query binds the target declaration to.
	DeclSlot() string

	// Edit computes the edit for a match of a target declaration.
	Edit(p program.Program, b program.Binding, text string) (edit.Edit, error)
}

// Stats counts what a Generator did.
type Stats struct {
	Matches   int // matches of a target declaration
	Edits     int // edits computed
	Conflicts int // edits that overlapped an earlier edit
	Failures  int // matches with no edit: unbound slots or no insertion point
}

func (s Stats) String() string {
	return fmt.Sprintf("%d matches, %d edits, %d conflicts, %d failures", s.Matches, s.Edits, s.Conflicts, s.Failures)
}

// An Option configures a Generator.
type Option func(*Generator)

// WithSets makes the Generator add its edits to sets,
// which other generators may share.
func WithSets(sets edit.Sets) Option {
	return func(g *Generator) { g.sets = sets }
}

// withScratch makes a dry run check its edits against scratch,
// which other dry-run generators sharing WithSets also use.
func withScratch(scratch edit.Sets) Option {
	return func(g *Generator) { g.scratch = scratch }
}

// WithOutput sends diagnostics and verbose tracing to w.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) { g.out = w }
}

// A Generator runs an Expander's queries over a program and collects
// the resulting edits, one edit set per file.
//
// In a dry run, edits are checked against a private copy of the sets,
// so the edits reported and the conflicts found are the same as in a
// real run, but Replacements stays empty.
type Generator struct {
	x    Expander
	spec TargetSpec
	out  io.Writer

	p        program.Program
	rep      *Reporter
	sets     edit.Sets
	scratch  edit.Sets
	handlers map[program.Node]handler
	seen     map[event]bool
	reported []edit.Edit
	errs     ErrorList
	stats    Stats
}

// A handler processes the matches of one bound declaration.
type handler func(program.Binding)

// An event is a matched node and the declaration a match bound for it.
// Queries for two spellings of one target, f and S::f, produce the same
// event; it is handled once.
type event struct {
	node, decl program.Node
}

// NewGenerator returns a Generator for x and spec.
func NewGenerator(x Expander, spec TargetSpec, opts ...Option) *Generator {
	g := &Generator{
		x:        x,
		spec:     spec,
		sets:     make(edit.Sets),
		scratch:  make(edit.Sets),
		handlers: make(map[program.Node]handler),
		seen:     make(map[event]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rep = NewReporter(g.out, nil, spec.Verbose)
	return g
}

// Names returns the target names, sorted.
func (g *Generator) Names() []string {
	names := bulk.MapKeysSlice(g.spec.Names)
	sort.Strings(names)
	return names
}

// Matchers returns the queries for every target, in sorted target order.
func (g *Generator) Matchers() []program.Matcher {
	var ms []program.Matcher
	for _, name := range g.Names() {
		ms = append(ms, g.x.Patterns(name)...)
	}
	return ms
}

// Run finds every match of g's queries in p, in document order,
// and hands each to the handler for the declaration it binds.
func (g *Generator) Run(p program.Program) {
	Run(p, g)
}

// Run runs gens over p in a single traversal. Matches are handled in
// document order; at one node, in the order gens are given.
func Run(p program.Program, gens ...*Generator) {
	var ms []program.Matcher
	var owner []*Generator
	for _, g := range gens {
		g.setProgram(p)
		for _, m := range g.Matchers() {
			ms = append(ms, m)
			owner = append(owner, g)
		}
	}
	for _, m := range program.Find(p, ms...) {
		owner[m.Matcher].dispatch(m)
	}
}

func (g *Generator) dispatch(m program.Match) {
	decl := m.Binding[g.x.DeclSlot()]
	if decl == nil {
		g.OnMatch(m.Binding)
		return
	}
	ev := event{m.Node, decl}
	if g.seen[ev] {
		return
	}
	g.seen[ev] = true
	g.handlerFor(decl)(m.Binding)
}

func (g *Generator) setProgram(p program.Program) {
	if g.p != p {
		g.p = p
		g.rep = NewReporter(g.out, p, g.spec.Verbose)
	}
}

func (g *Generator) handlerFor(decl program.Node) handler {
	if h, ok := g.handlers[decl]; ok {
		return h
	}
	h := handler(func(program.Binding) {})
	if g.isTarget(decl) {
		g.rep.Tracef("arrived at target: %s", declName(decl))
		h = g.expand
	}
	g.handlers[decl] = h
	return h
}

// OnMatch handles one match: it resolves the bound declaration,
// ignores declarations that are not targets, and computes and records
// the edit for the rest.
func (g *Generator) OnMatch(b program.Binding) {
	decl, ok := b[g.x.DeclSlot()]
	if !ok || decl == nil {
		err := &BindingError{Pos: firstPos(g.p, b), Slot: g.x.DeclSlot()}
		g.stats.Failures++
		g.errs.Add(err)
		g.rep.Warn(err)
		return
	}
	if !g.isTarget(decl) {
		return
	}
	g.expand(b)
}

func (g *Generator) isTarget(decl program.Node) bool {
	switch d := decl.(type) {
	case *program.Func:
		_, ok := g.spec.Names[d.Name]
		if !ok {
			_, ok = g.spec.Names[d.QualifiedName()]
		}
		return ok
	case *program.Var:
		_, ok := g.spec.Names[d.Name]
		return ok
	}
	return false
}

func declName(decl program.Node) string {
	switch d := decl.(type) {
	case *program.Func:
		return d.QualifiedName()
	case *program.Var:
		return d.Name
	}
	return fmt.Sprint(decl)
}

func (g *Generator) expand(b program.Binding) {
	g.stats.Matches++
	e, err := g.x.Edit(g.p, b, g.spec.NewText)
	if err != nil {
		g.stats.Failures++
		g.errs.Add(err)
		g.rep.Warn(err)
		return
	}
	g.stats.Edits++
	g.reported = append(g.reported, e)
	g.rep.Tracef("suggested replacement: %s", e)

	sets := g.sets
	if g.spec.DryRun {
		sets = g.scratch
	}
	if err := sets.Add(e); err != nil {
		var c *edit.ConflictError
		if errors.As(err, &c) {
			g.stats.Conflicts++
			g.errs.AddConflict(g.p, c)
		} else {
			g.stats.Failures++
			g.errs.Add(err)
		}
		g.rep.Warn(err)
	}
}

// firstPos returns the position of the first node bound in b, by slot name.
func firstPos(p program.Program, b program.Binding) token.Position {
	keys := bulk.MapKeysSlice(b)
	sort.Strings(keys)
	for _, k := range keys {
		if n := b[k]; n != nil {
			r := n.Range()
			return program.Position(p, r.File, r.Start)
		}
	}
	return token.Position{}
}

// Replacements returns the edits kept so far, by file.
// It is empty after a dry run.
func (g *Generator) Replacements() edit.Sets { return g.sets }

// Accepted returns the edits that passed the conflict check:
// Replacements after a real run, the scratch sets after a dry run.
// Both runs accept the same edits.
func (g *Generator) Accepted() edit.Sets {
	if g.spec.DryRun {
		return g.scratch
	}
	return g.sets
}

// Reported returns every edit computed so far, in match order,
// including those that conflicted. A dry run reports the same edits
// as a real one.
func (g *Generator) Reported() []edit.Edit { return g.reported }

// Stats returns the counts for the matches handled so far.
func (g *Generator) Stats() Stats { return g.stats }

// Err returns the diagnostics collected so far, or nil.
func (g *Generator) Err() error { return g.errs.Err() }
