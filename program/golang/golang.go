// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package golang builds a program model of Go packages
// using go/packages and go/types.
//
// Go has no default arguments, so every Param has an empty Default.
// A final ...T parameter is Variadic. Calls through a method value
// (x.m(), including an embedded or pointer receiver) are bound; calls
// through a method expression (T.m(x)) are not. A reference to a
// package-level variable of another package, written pkg.V, spans
// the whole selector.
package golang

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"rsc.io/xpnd/program"
)

// A Program is a Go program model.
type Program struct {
	ModPath string // module path from go.mod; "" outside a module
	ModRoot string // directory containing go.mod

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

func (p *Program) Files() []*program.File          { return p.files }
func (p *Program) File(name string) *program.File { return p.byName[name] }
func (p *Program) Nodes() []program.Node           { return p.nodes }
func (p *Program) Funcs() []*program.Func          { return p.funcs }
func (p *Program) Calls() []*program.Call          { return p.calls }
func (p *Program) Vars() []*program.Var            { return p.vars }
func (p *Program) Refs() []*program.Ref            { return p.refs }

// Load loads and type-checks the packages matching patterns in dir,
// "." if none are given. Files outside the main module, or in its
// vendor directory, are system files.
func Load(dir string, patterns ...string) (*Program, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	p := &Program{
		fset:   token.NewFileSet(),
		byName: make(map[string]*program.File),
	}
	if err := p.findModule(dir); err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
		Fset: p.fset,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, &program.ParseError{Err: err}
	}
	if len(pkgs) == 0 {
		return nil, program.NewParseError("", "no packages matching %s in %s", strings.Join(patterns, " "), dir)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			e := pkg.Errors[0]
			file := e.Pos
			if i := strings.Index(file, ":"); i >= 0 {
				file = file[:i]
			}
			return nil, program.NewParseError(file, "%s", e.Msg)
		}
	}

	l := &loader{
		p:     p,
		funcs: make(map[types.Object]*program.Func),
		vars:  make(map[types.Object]*program.Var),
	}
	for _, pkg := range pkgs {
		if err := l.addFiles(pkg); err != nil {
			return nil, err
		}
	}
	for _, pkg := range pkgs {
		l.declare(pkg)
	}
	for _, pkg := range pkgs {
		l.resolve(pkg)
	}
	program.SortNodes(p.files, p.nodes)
	return p, nil
}

// findModule records the module enclosing dir, if any.
func (p *Program) findModule(dir string) error {
	for d := dir; ; {
		gomod := filepath.Join(d, "go.mod")
		data, err := os.ReadFile(gomod)
		if err == nil {
			f, err := modfile.ParseLax(gomod, data, nil)
			if err != nil {
				return program.NewParseError(gomod, "%w", err)
			}
			if f.Module != nil {
				p.ModPath = f.Module.Mod.Path
			}
			p.ModRoot = d
			return nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return nil
		}
		d = parent
	}
}

func (p *Program) isSystem(name string) bool {
	if p.ModRoot == "" {
		return false
	}
	rel, err := filepath.Rel(p.ModRoot, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	return rel == "vendor" || strings.HasPrefix(rel, "vendor"+string(filepath.Separator))
}

type loader struct {
	p     *Program
	funcs map[types.Object]*program.Func
	vars  map[types.Object]*program.Var
}

func (l *loader) addFiles(pkg *packages.Package) error {
	for _, f := range pkg.Syntax {
		tf := l.p.fset.File(f.Pos())
		if tf == nil || l.p.byName[tf.Name()] != nil {
			continue
		}
		text, err := os.ReadFile(tf.Name())
		if err != nil {
			return program.NewParseError(tf.Name(), "%w", err)
		}
		if len(text) != tf.Size() {
			return program.NewParseError(tf.Name(), "file changed during load")
		}
		pf := program.WrapFile(tf, text, l.p.isSystem(tf.Name()))
		l.p.files = append(l.p.files, pf)
		l.p.byName[pf.Name] = pf
	}
	return nil
}

func (l *loader) file(pos token.Pos) *program.File {
	return l.p.byName[l.p.fset.File(pos).Name()]
}

func (l *loader) offset(pos token.Pos) int {
	if !pos.IsValid() {
		return -1
	}
	return l.p.fset.File(pos).Offset(pos)
}

func (l *loader) rng(n ast.Node) program.Range {
	return l.span(n.Pos(), n.End())
}

func (l *loader) span(start, end token.Pos) program.Range {
	return program.Range{File: l.file(start).Name, Start: l.offset(start), End: l.offset(end)}
}

// declare records function and package-level variable declarations.
func (l *loader) declare(pkg *packages.Package) {
	for _, f := range pkg.Syntax {
		pf := l.file(f.Pos())
		if pf == nil {
			continue
		}
		for _, decl := range f.Decls {
			switch decl := decl.(type) {
			case *ast.FuncDecl:
				fn := l.newFunc(decl, pf.System)
				l.p.funcs = append(l.p.funcs, fn)
				l.p.nodes = append(l.p.nodes, fn)
				if obj := pkg.TypesInfo.Defs[decl.Name]; obj != nil {
					l.funcs[obj] = fn
				}
			case *ast.GenDecl:
				if decl.Tok != token.VAR {
					continue
				}
				for _, spec := range decl.Specs {
					spec := spec.(*ast.ValueSpec)
					for _, id := range spec.Names {
						if id.Name == "_" {
							continue
						}
						v := &program.Var{Name: id.Name, Global: true, Span: l.rng(spec), System: pf.System}
						l.p.vars = append(l.p.vars, v)
						l.p.nodes = append(l.p.nodes, v)
						if obj := pkg.TypesInfo.Defs[id]; obj != nil {
							l.vars[obj] = v
						}
					}
				}
			}
		}
	}
}

func (l *loader) newFunc(decl *ast.FuncDecl, system bool) *program.Func {
	fn := &program.Func{
		Name:       decl.Name.Name,
		Span:       l.rng(decl),
		NameSpan:   l.rng(decl.Name),
		Lparen:     l.offset(decl.Type.Params.Opening),
		Rparen:     l.offset(decl.Type.Params.Closing),
		Definition: decl.Body != nil,
		System:     system,
	}
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		fn.Method = true
		fn.Class = recvName(decl.Recv.List[0].Type)
	}
	for _, field := range decl.Type.Params.List {
		_, variadic := field.Type.(*ast.Ellipsis)
		if len(field.Names) == 0 {
			fn.Params = append(fn.Params, &program.Param{Span: l.rng(field), Variadic: variadic})
			continue
		}
		for i, id := range field.Names {
			end := id.End()
			if i == len(field.Names)-1 {
				end = field.End()
			}
			fn.Params = append(fn.Params, &program.Param{
				Name:     id.Name,
				Span:     l.span(id.Pos(), end),
				Variadic: variadic,
			})
		}
	}
	return fn
}

// recvName returns the base type name of a receiver type expression.
func recvName(x ast.Expr) string {
	for {
		switch t := x.(type) {
		case *ast.StarExpr:
			x = t.X
		case *ast.ParenExpr:
			x = t.X
		case *ast.IndexExpr:
			x = t.X
		case *ast.IndexListExpr:
			x = t.X
		case *ast.Ident:
			return t.Name
		default:
			return fmt.Sprint(x)
		}
	}
}

// resolve records call sites and references to package-level variables.
func (l *loader) resolve(pkg *packages.Package) {
	info := pkg.TypesInfo
	for _, f := range pkg.Syntax {
		pf := l.file(f.Pos())
		if pf == nil {
			continue
		}
		for _, decl := range f.Decls {
			var caller *program.Func
			if fd, ok := decl.(*ast.FuncDecl); ok {
				caller = l.funcs[info.Defs[fd.Name]]
			}
			qualified := make(map[*ast.Ident]bool)
			ast.Inspect(decl, func(n ast.Node) bool {
				switch n := n.(type) {
				case *ast.CallExpr:
					l.call(info, n, caller, pf.System)
				case *ast.SelectorExpr:
					if id, ok := n.X.(*ast.Ident); ok {
						if _, ok := info.Uses[id].(*types.PkgName); ok {
							if v := l.globalVar(info.Uses[n.Sel]); v != nil {
								qualified[n.Sel] = true
								l.addRef(n, n.Sel.Name, v, caller, pf.System)
							}
						}
					}
				case *ast.Ident:
					if qualified[n] {
						break
					}
					if v := l.globalVar(info.Uses[n]); v != nil {
						l.addRef(n, n.Name, v, caller, pf.System)
					}
				}
				return true
			})
		}
	}
}

// globalVar returns the Var for obj if it is a package-level variable.
// Variables of packages outside the program get a Var with no span.
func (l *loader) globalVar(obj types.Object) *program.Var {
	tv, ok := obj.(*types.Var)
	if !ok || tv.IsField() || tv.Pkg() == nil || tv.Parent() != tv.Pkg().Scope() {
		return nil
	}
	if v := l.vars[obj]; v != nil {
		return v
	}
	v := &program.Var{Name: tv.Name(), Global: true, System: true}
	l.vars[obj] = v
	return v
}

func (l *loader) addRef(n ast.Node, name string, v *program.Var, caller *program.Func, system bool) {
	r := &program.Ref{
		Name:   name,
		Span:   l.rng(n),
		Var:    v,
		Caller: caller,
		System: system,
	}
	l.p.refs = append(l.p.refs, r)
	l.p.nodes = append(l.p.nodes, r)
}

func (l *loader) call(info *types.Info, call *ast.CallExpr, caller *program.Func, system bool) {
	if tv, ok := info.Types[call.Fun]; ok && tv.IsType() {
		// Conversion.
		return
	}
	c := &program.Call{
		Span:   l.rng(call),
		Lparen: l.offset(call.Lparen),
		Rparen: l.offset(call.Rparen),
		Caller: caller,
		System: system,
	}
	for _, arg := range call.Args {
		c.Args = append(c.Args, l.rng(arg))
	}
	fun := ast.Unparen(call.Fun)
	if ix, ok := fun.(*ast.IndexExpr); ok {
		fun = ix.X
	} else if ix, ok := fun.(*ast.IndexListExpr); ok {
		fun = ix.X
	}
	switch fun := fun.(type) {
	case *ast.Ident:
		c.Name = fun.Name
	case *ast.SelectorExpr:
		c.Name = fun.Sel.Name
		if sel := info.Selections[fun]; sel != nil && sel.Kind() == types.MethodVal {
			c.Bound = true
			c.Receiver = l.rng(fun.X)
		}
	}
	if fn, ok := typeutil.Callee(info, call).(*types.Func); ok {
		c.Callee = l.funcs[fn.Origin()]
	}
	l.p.calls = append(l.p.calls, c)
	l.p.nodes = append(l.p.nodes, c)
}
