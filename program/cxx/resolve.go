// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	sitter "github.com/smacker/go-tree-sitter"

	"rsc.io/xpnd/program"
)

// resolve records call sites and variable references.
func (b *builder) resolve() {
	for _, u := range b.units {
		for _, c := range u.caps {
			switch c.kind {
			case "reference.call":
				b.call(u, c.node)
			case "reference.identifier":
				b.identRef(u, c.node)
			case "reference.qualified":
				b.qualifiedRef(u, c.node)
			}
		}
	}
}

// caller returns the function whose definition contains n, or nil.
func (b *builder) caller(u *unit, n *sitter.Node) *program.Func {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "function_definition" {
			return b.funcAt[keyOf(u, p)]
		}
	}
	return nil
}

func (b *builder) call(u *unit, n *sitter.Node) {
	c := &program.Call{
		Span:   b.rng(u, n),
		Lparen: -1,
		Rparen: -1,
		Caller: b.caller(u, n),
		System: u.file.System,
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.ChildCount()); i++ {
			ch := args.Child(i)
			switch {
			case ch.Type() == "(" && !ch.IsMissing():
				c.Lparen = int(ch.StartByte())
			case ch.Type() == ")" && !ch.IsMissing():
				c.Rparen = int(ch.StartByte())
			case ch.IsNamed() && ch.Type() != "comment":
				c.Args = append(c.Args, b.rng(u, ch))
			}
		}
	}
	b.callee(u, c, n.ChildByFieldName("function"))
	b.p.calls = append(b.p.calls, c)
	b.p.nodes = append(b.p.nodes, c)
}

// callee resolves the function expression fn of call c.
func (b *builder) callee(u *unit, c *program.Call, fn *sitter.Node) {
	if fn == nil {
		return
	}
	nargs := len(c.Args)
	switch fn.Type() {
	case "identifier":
		c.Name = text(u, fn)
		if b.localDecl(u, fn, c.Name) != nil {
			// Calls a function pointer or object.
			return
		}
		if cl := c.Caller; cl != nil && cl.Method {
			if m := pick(b.methods(cl.Class, c.Name), nargs); m != nil {
				c.Callee = m
				c.Bound = !m.Static
				c.Implicit = !m.Static
				return
			}
		}
		c.Callee = pick(b.free[c.Name], nargs)

	case "template_function":
		b.callee(u, c, fn.ChildByFieldName("name"))

	case "qualified_identifier":
		scope, inner := splitQualified(u, fn)
		c.Name = text(u, inner)
		if cls := b.classes[lastName(scope)]; scope != "" && cls != nil {
			m := pick(b.methods(cls.name, c.Name), nargs)
			c.Callee = m
			if m != nil && !m.Static && c.Caller != nil && c.Caller.Method && b.derives(c.Caller.Class, cls.name) {
				c.Bound = true
				c.Implicit = true
			}
			return
		}
		c.Callee = pick(b.free[c.Name], nargs)

	case "field_expression":
		field := fn.ChildByFieldName("field")
		switch field.Type() {
		case "qualified_identifier":
			_, field = splitQualified(u, field)
		case "template_method":
			field = field.ChildByFieldName("name")
		}
		c.Name = text(u, field)
		c.Bound = true
		recv := fn.ChildByFieldName("argument")
		c.Receiver = b.rng(u, recv)
		// A receiver of a known type that is not a modeled class, such as
		// std::string, is some library's method: leave it unresolved.
		if cls := b.receiverClass(u, recv, c.Caller, 0); cls != "" {
			c.Callee = pick(b.methods(cls, c.Name), nargs)
			return
		}
		c.Callee = pick(b.anyMethods(c.Name), nargs)
	}
}

// pick chooses the first candidate that accepts nargs arguments,
// or else the first candidate.
func pick(cands []*program.Func, nargs int) *program.Func {
	for _, f := range cands {
		if f.MinArgs() <= nargs && (nargs <= len(f.Params) || f.VariadicIndex() >= 0) {
			return f
		}
	}
	if len(cands) > 0 {
		return cands[0]
	}
	return nil
}

// methods returns the methods named name of class cls,
// looking through base classes when cls has none.
func (b *builder) methods(cls, name string) []*program.Func {
	seen := make(map[string]bool)
	var walk func(string) []*program.Func
	walk = func(cls string) []*program.Func {
		c := b.classes[cls]
		if c == nil || seen[cls] {
			return nil
		}
		seen[cls] = true
		if ms := c.methods[name]; len(ms) > 0 {
			return ms
		}
		for _, base := range c.bases {
			if ms := walk(base); len(ms) > 0 {
				return ms
			}
		}
		return nil
	}
	return walk(cls)
}

// anyMethods returns the methods named name in every class.
func (b *builder) anyMethods(name string) []*program.Func {
	var all []*program.Func
	for _, c := range b.classList {
		all = append(all, c.methods[name]...)
	}
	return all
}

// derives reports whether class sub is base or derives from it.
func (b *builder) derives(sub, base string) bool {
	seen := make(map[string]bool)
	for todo := []string{sub}; len(todo) > 0; {
		cls := todo[0]
		todo = todo[1:]
		if cls == base {
			return true
		}
		if c := b.classes[cls]; c != nil && !seen[cls] {
			seen[cls] = true
			todo = append(todo, c.bases...)
		}
	}
	return false
}

// field returns the declared type of a data member of cls or its bases.
func (b *builder) field(cls, name string) (typ string, ok bool) {
	seen := make(map[string]bool)
	for todo := []string{cls}; len(todo) > 0; {
		c := b.classes[todo[0]]
		todo = todo[1:]
		if c == nil || seen[c.name] {
			continue
		}
		seen[c.name] = true
		if t, ok := c.fields[name]; ok {
			return t, true
		}
		todo = append(todo, c.bases...)
	}
	return "", false
}

// receiverClass returns the class of receiver expression e, or "".
func (b *builder) receiverClass(u *unit, e *sitter.Node, caller *program.Func, depth int) string {
	if e == nil || depth > 8 {
		return ""
	}
	switch e.Type() {
	case "this":
		if caller != nil {
			return caller.Class
		}
	case "identifier":
		name := text(u, e)
		if d := b.localDecl(u, e, name); d != nil {
			return typeName(u, d.ChildByFieldName("type"))
		}
		if caller != nil && caller.Method {
			if t, ok := b.field(caller.Class, name); ok {
				return t
			}
		}
		return b.globTypes[name]
	case "parenthesized_expression":
		if e.NamedChildCount() > 0 {
			return b.receiverClass(u, e.NamedChild(0), caller, depth+1)
		}
	case "pointer_expression":
		return b.receiverClass(u, e.ChildByFieldName("argument"), caller, depth+1)
	case "field_expression":
		cls := b.receiverClass(u, e.ChildByFieldName("argument"), caller, depth+1)
		t, _ := b.field(cls, text(u, e.ChildByFieldName("field")))
		return t
	}
	return ""
}

// identRef records a reference through a plain identifier
// when it names a variable with global storage.
func (b *builder) identRef(u *unit, id *sitter.Node) {
	if !isUse(id) {
		return
	}
	name := text(u, id)
	caller := b.caller(u, id)
	var v *program.Var
	if d := b.localDecl(u, id, name); d != nil {
		if d.Type() != "declaration" || !hasStorage(u, d, "static") {
			return
		}
		v = b.staticLocal(u, d, name)
	} else {
		if caller != nil && caller.Method {
			if _, ok := b.field(caller.Class, name); ok {
				return
			}
		}
		v = b.globals[name]
	}
	if v == nil {
		return
	}
	b.addRef(u, id, name, v, caller)
}

// qualifiedRef records a reference through ::name or ns::name.
// The reference spans the whole qualified name.
func (b *builder) qualifiedRef(u *unit, q *sitter.Node) {
	if p := q.Parent(); p != nil && p.Type() == "qualified_identifier" || !isUse(q) {
		return
	}
	scope, inner := splitQualified(u, q)
	if inner == nil || inner.Type() != "identifier" {
		return
	}
	if scope != "" && b.classes[lastName(scope)] != nil {
		return
	}
	name := text(u, inner)
	if v := b.globals[name]; v != nil {
		b.addRef(u, q, name, v, b.caller(u, q))
	}
}

func (b *builder) addRef(u *unit, n *sitter.Node, name string, v *program.Var, caller *program.Func) {
	r := &program.Ref{
		Name:   name,
		Span:   b.rng(u, n),
		Var:    v,
		Caller: caller,
		System: u.file.System,
	}
	b.p.refs = append(b.p.refs, r)
	b.p.nodes = append(b.p.nodes, r)
}

func (b *builder) staticLocal(u *unit, d *sitter.Node, name string) *program.Var {
	k := keyOf(u, d)
	if v := b.statics[k]; v != nil {
		return v
	}
	v := &program.Var{Name: name, Global: true, Local: true, Span: b.rng(u, d), System: u.file.System}
	b.statics[k] = v
	b.p.vars = append(b.p.vars, v)
	b.p.nodes = append(b.p.nodes, v)
	return v
}

// isUse reports whether the name node n is used as an expression
// rather than declared, called, or written as a member or label.
func isUse(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case "function_declarator", "init_declarator", "pointer_declarator",
		"array_declarator", "parenthesized_declarator", "attributed_declarator",
		"declaration", "field_declaration", "parameter_declaration",
		"optional_parameter_declaration", "variadic_parameter_declaration":
		if isDeclaratorChild(p, n) {
			return false
		}
	case "qualified_identifier", "reference_declarator", "structured_binding_declarator",
		"enumerator", "labeled_statement", "goto_statement",
		"namespace_definition", "using_declaration", "namespace_alias_definition",
		"preproc_def", "preproc_function_def", "preproc_params":
		return false
	case "call_expression":
		if f := p.ChildByFieldName("function"); f != nil && sameNode(f, n) {
			return false
		}
	case "template_function":
		return false
	case "for_range_loop":
		if d := p.ChildByFieldName("declarator"); d != nil && sameNode(d, n) {
			return false
		}
	}
	return true
}

func isDeclaratorChild(p, n *sitter.Node) bool {
	for i := 0; i < int(p.ChildCount()); i++ {
		if p.FieldNameForChild(i) == "declarator" && sameNode(p.Child(i), n) {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// localDecl returns the declaration of name in a block, statement, or
// parameter scope enclosing the use n, or nil.
// For a parameter, the parameter declaration is returned.
func (b *builder) localDecl(u *unit, n *sitter.Node, name string) *sitter.Node {
	at := n.StartByte()
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "compound_statement":
			for i := 0; i < int(p.NamedChildCount()); i++ {
				d := p.NamedChild(i)
				if d.StartByte() >= at {
					break
				}
				if d.Type() == "declaration" && declares(u, d, name) {
					return d
				}
			}
		case "for_statement":
			if d := p.ChildByFieldName("initializer"); d != nil && d.Type() == "declaration" && declares(u, d, name) {
				return d
			}
		case "for_range_loop":
			if id := declName(p.ChildByFieldName("declarator")); id != nil && text(u, id) == name {
				return p
			}
		case "condition_clause":
			for i := 0; i < int(p.NamedChildCount()); i++ {
				if d := p.NamedChild(i); d.Type() == "declaration" && declares(u, d, name) {
					return d
				}
			}
		case "catch_clause":
			if d := paramDecl(u, p.ChildByFieldName("parameters"), name); d != nil {
				return d
			}
		case "lambda_expression":
			if fd := p.ChildByFieldName("declarator"); fd != nil {
				if d := paramDecl(u, fd.ChildByFieldName("parameters"), name); d != nil {
					return d
				}
			}
		case "function_definition":
			fd := funcDeclarator(p.ChildByFieldName("declarator"))
			if fd != nil {
				return paramDecl(u, fd.ChildByFieldName("parameters"), name)
			}
			return nil
		}
	}
	return nil
}

func declares(u *unit, d *sitter.Node, name string) bool {
	for i := 0; i < int(d.ChildCount()); i++ {
		if d.FieldNameForChild(i) != "declarator" {
			continue
		}
		if id := declName(d.Child(i)); id != nil && text(u, id) == name {
			return true
		}
	}
	return false
}

func paramDecl(u *unit, params *sitter.Node, name string) *sitter.Node {
	if params == nil {
		return nil
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if id := declName(p.ChildByFieldName("declarator")); id != nil && text(u, id) == name {
			return p
		}
	}
	return nil
}
