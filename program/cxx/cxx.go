// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cxx builds a program model of C++ source using tree-sitter.
//
// Build parses each source file, follows #include directives through the
// configured include directories, and resolves declarations, call sites,
// and variable references by name:
//
//   - a call through a plain or qualified name resolves to the free function
//     (or static member) of that name;
//   - a call through an object, pointer, or reference resolves to a method of
//     the receiver's declared class when that can be determined from a
//     parameter, local, member, or global declaration, and otherwise to the
//     first method of that name;
//   - an unqualified call inside a member function prefers a method of the
//     enclosing class, as a call through an implicit this;
//   - a variable reference resolves to a global variable only when no local,
//     parameter, or member of the same name is in scope.
//
// Overloads are chosen by argument count. There is no preprocessing,
// template instantiation, or type checking beyond this.
package cxx

import (
	"context"
	_ "embed"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"golang.org/x/sync/errgroup"

	"rsc.io/xpnd/program"
)

//go:embed queries/index.scm
var indexQuerySource []byte

var indexQuery struct {
	once sync.Once
	q    *sitter.Query
	err  error
}

// compiledQuery returns the index query, compiled once and shared.
func compiledQuery() (*sitter.Query, error) {
	indexQuery.once.Do(func() {
		q, err := sitter.NewQuery(indexQuerySource, cpp.GetLanguage())
		if err != nil {
			indexQuery.err = fmt.Errorf("compiling index query: %w", err)
			return
		}
		indexQuery.q = q
	})
	return indexQuery.q, indexQuery.err
}

// A Program is a C++ program model.
type Program struct {
	Config Config

	fset   *token.FileSet
	files  []*program.File
	byName map[string]*program.File
	nodes  []program.Node

	funcs []*program.Func
	calls []*program.Call
	vars  []*program.Var
	refs  []*program.Ref
}

var _ program.Program = (*Program)(nil)

func (p *Program) Files() []*program.File { return p.files }

func (p *Program) File(name string) *program.File { return p.byName[name] }

func (p *Program) Nodes() []program.Node { return p.nodes }

// Funcs returns all function declarations in document order.
func (p *Program) Funcs() []*program.Func { return p.funcs }

// Calls returns all call sites in document order.
func (p *Program) Calls() []*program.Call { return p.calls }

// Vars returns all variables with global storage in document order.
func (p *Program) Vars() []*program.Var { return p.vars }

// Refs returns all resolved variable references in document order.
func (p *Program) Refs() []*program.Ref { return p.refs }

// A unit is one parsed file.
type unit struct {
	file *program.File
	tree *sitter.Tree
	caps []capture
}

// A capture is one match of the index query.
type capture struct {
	kind string       // capture name of the matched node
	node *sitter.Node // matched node
	aux  *sitter.Node // @name or @path sub-capture, if any
}

// Build parses sources, plus any files they include, as one program.
// Flags are compiler flags; see ParseFlags.
// A syntax error in any file is reported as a *program.ParseError.
func Build(ctx context.Context, sources []program.Source, flags []string) (*Program, error) {
	cfg, err := ParseFlags(flags)
	if err != nil {
		return nil, &program.ParseError{Err: err}
	}
	q, err := compiledQuery()
	if err != nil {
		return nil, err
	}

	p := &Program{
		Config: cfg,
		fset:   token.NewFileSet(),
		byName: make(map[string]*program.File),
	}
	var units []*unit
	defer func() {
		for _, u := range units {
			if u.tree != nil {
				u.tree.Close()
			}
		}
	}()

	wave := make([]program.Source, 0, len(sources))
	for _, src := range sources {
		src.Name = filepath.Clean(src.Name)
		if p.byName[src.Name] != nil {
			continue
		}
		src.System = src.System || cfg.IsSystem(src.Name)
		p.addFile(src)
		wave = append(wave, src)
	}
	for len(wave) > 0 {
		parsed, err := parseAll(ctx, q, p, wave)
		units = append(units, parsed...)
		if err != nil {
			return nil, err
		}
		wave = nil
		for _, u := range parsed {
			more, err := p.includes(u)
			if err != nil {
				return nil, err
			}
			wave = append(wave, more...)
		}
	}

	b := newBuilder(p, units)
	b.declare()
	b.resolve()
	program.SortNodes(p.files, p.nodes)
	return p, nil
}

func (p *Program) addFile(src program.Source) *program.File {
	f := program.NewFile(p.fset, src.Name, src.Text, src.System)
	p.files = append(p.files, f)
	p.byName[f.Name] = f
	return f
}

// parseAll parses one wave of files in parallel,
// with a tree-sitter parser per goroutine.
func parseAll(ctx context.Context, q *sitter.Query, p *Program, wave []program.Source) ([]*unit, error) {
	units := make([]*unit, len(wave))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, src := range wave {
		u := &unit{file: p.byName[src.Name]}
		units[i] = u
		g.Go(func() error {
			return u.parse(ctx, q)
		})
	}
	err := g.Wait()
	var done []*unit
	for _, u := range units {
		if u.tree != nil {
			done = append(done, u)
		}
	}
	return done, err
}

func (u *unit) parse(ctx context.Context, q *sitter.Query) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, u.file.Text)
	if err != nil {
		return program.NewParseError(u.file.Name, "tree-sitter parse failed: %w", err)
	}
	u.tree = tree
	root := tree.RootNode()
	if bad := firstError(root); bad != nil {
		pos := u.file.Position(int(bad.StartByte()))
		what := "syntax error"
		if bad.IsMissing() {
			what = "missing " + bad.Type()
		}
		return program.NewParseError(u.file.Name, "%d:%d: %s", pos.Line, pos.Column, what)
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var c capture
		for _, mc := range m.Captures {
			switch name := q.CaptureNameForId(mc.Index); name {
			case "name", "path":
				c.aux = mc.Node
			default:
				c.kind = name
				c.node = mc.Node
			}
		}
		if c.node != nil {
			u.caps = append(u.caps, c)
		}
	}
	return nil
}

// firstError returns the first ERROR or MISSING node under n, or nil.
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil || !n.HasError() && !n.IsMissing() {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return n
}

// includes returns the not yet loaded files that u includes.
func (p *Program) includes(u *unit) ([]program.Source, error) {
	var more []program.Source
	for _, c := range u.caps {
		if c.kind != "include" || c.aux == nil {
			continue
		}
		path := c.aux.Content(u.file.Text)
		angled := strings.HasPrefix(path, "<")
		path = strings.Trim(path, `"<>`)
		name, system, ok := p.Config.findInclude(u.file.Name, path, angled)
		if !ok || p.byName[name] != nil {
			continue
		}
		text, err := os.ReadFile(name)
		if err != nil {
			return nil, program.NewParseError(u.file.Name, "reading #include %q: %w", path, err)
		}
		src := program.Source{Name: name, Text: text, System: system || u.file.System}
		p.addFile(src)
		more = append(more, src)
	}
	return more, nil
}

// findInclude resolves an #include path the way a compiler searches:
// the including file's directory (quoted form only), then IncludeDirs,
// then SystemDirs.
func (c Config) findInclude(from, path string, angled bool) (name string, system, ok bool) {
	var dirs []string
	if !angled {
		dirs = append(dirs, filepath.Dir(from))
	}
	dirs = append(dirs, c.IncludeDirs...)
	nuser := len(dirs)
	dirs = append(dirs, c.SystemDirs...)
	for i, dir := range dirs {
		name := filepath.Join(dir, path)
		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			continue
		}
		return name, i >= nuser || c.IsSystem(name), true
	}
	return "", false, false
}
