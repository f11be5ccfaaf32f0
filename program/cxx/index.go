// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"rsc.io/xpnd/program"
)

// A nodeKey identifies a tree-sitter node across lookups.
// Node values returned by different calls are not comparable.
type nodeKey struct {
	file       string
	start, end uint32
	typ        string
}

func keyOf(u *unit, n *sitter.Node) nodeKey {
	return nodeKey{u.file.Name, n.StartByte(), n.EndByte(), n.Type()}
}

// A class is a class, struct, or union definition.
type class struct {
	name    string
	bases   []string
	methods map[string][]*program.Func
	fields  map[string]string // field name → declared type name
}

// A builder turns the query captures of all units into program nodes.
type builder struct {
	p     *Program
	units []*unit

	classes   map[string]*class
	classList []*class
	free      map[string][]*program.Func
	globals   map[string]*program.Var
	globTypes map[string]string // global name → declared type name
	funcAt    map[nodeKey]*program.Func
	statics   map[nodeKey]*program.Var
}

func newBuilder(p *Program, units []*unit) *builder {
	return &builder{
		p:         p,
		units:     units,
		classes:   make(map[string]*class),
		free:      make(map[string][]*program.Func),
		globals:   make(map[string]*program.Var),
		globTypes: make(map[string]string),
		funcAt:    make(map[nodeKey]*program.Func),
		statics:   make(map[nodeKey]*program.Var),
	}
}

func (b *builder) rng(u *unit, n *sitter.Node) program.Range {
	return program.Range{File: u.file.Name, Start: int(n.StartByte()), End: int(n.EndByte())}
}

func text(u *unit, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(u.file.Text)
}

// declare records classes, then functions and globals.
// Classes come first so out-of-line member definitions
// can be told apart from namespace-qualified free functions.
func (b *builder) declare() {
	for _, u := range b.units {
		for _, c := range u.caps {
			if c.kind == "definition.class" {
				b.declareClass(u, c.node, c.aux)
			}
		}
	}
	for _, u := range b.units {
		for _, c := range u.caps {
			switch c.kind {
			case "definition.function":
				b.declareFuncs(u, c.node, true)
			case "declaration", "declaration.field":
				b.declareFuncs(u, c.node, false)
			}
		}
	}
	b.mergeDefaults()
}

func (b *builder) declareClass(u *unit, n, name *sitter.Node) {
	c := &class{
		name:    lastName(text(u, name)),
		methods: make(map[string][]*program.Func),
		fields:  make(map[string]string),
	}
	if b.classes[c.name] != nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() != "base_class_clause" {
			continue
		}
		for j := 0; j < int(ch.NamedChildCount()); j++ {
			if t := typeName(u, ch.NamedChild(j)); t != "" {
				c.bases = append(c.bases, t)
			}
		}
	}
	b.classes[c.name] = c
	b.classList = append(b.classList, c)
}

// declareFuncs records the functions, fields, and global variables
// declared by n, a function_definition, declaration, or field_declaration.
func (b *builder) declareFuncs(u *unit, n *sitter.Node, def bool) {
	owner := enclosingClass(u, n)
	typ := typeName(u, n.ChildByFieldName("type"))
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		d := n.Child(i)
		fd := funcDeclarator(d)
		if fd != nil && fd.ChildByFieldName("declarator").Type() != "parenthesized_declarator" {
			if n.Type() == "declaration" && inBody(n) {
				// S s(x); in a body declares a variable.
				continue
			}
			f := b.newFunc(u, n, fd, owner)
			f.Definition = def
			b.addFunc(u, n, f)
			continue
		}
		if def {
			continue
		}
		id := declName(d)
		if id == nil {
			continue
		}
		name := text(u, id)
		switch {
		case n.Type() == "field_declaration" && owner != "":
			if c := b.classes[owner]; c != nil && !hasStorage(u, n, "static") {
				c.fields[name] = typ
			}
		case atNamespaceScope(n) && id.Type() == "identifier":
			if hasStorage(u, n, "extern") && b.globals[name] != nil {
				continue
			}
			v := &program.Var{Name: name, Global: true, Span: b.rng(u, n), System: u.file.System}
			if b.globals[name] == nil {
				b.globals[name] = v
				b.globTypes[name] = typ
			}
			b.p.vars = append(b.p.vars, v)
			b.p.nodes = append(b.p.nodes, v)
		}
	}
}

func (b *builder) newFunc(u *unit, n, fd *sitter.Node, owner string) *program.Func {
	nameNode := fd.ChildByFieldName("declarator")
	f := &program.Func{
		Span:   b.rng(u, n),
		Lparen: -1,
		Rparen: -1,
		System: u.file.System,
	}
	switch nameNode.Type() {
	case "qualified_identifier":
		scope, inner := splitQualified(u, nameNode)
		f.Name = text(u, inner)
		f.NameSpan = b.rng(u, inner)
		if owner == "" {
			if c := b.classes[lastName(scope)]; c != nil {
				owner = c.name
			}
		}
	case "template_function":
		inner := nameNode.ChildByFieldName("name")
		f.Name = text(u, inner)
		f.NameSpan = b.rng(u, inner)
	default:
		f.Name = text(u, nameNode)
		f.NameSpan = b.rng(u, nameNode)
	}
	if owner != "" {
		f.Class = owner
		f.Method = true
		f.Static = hasStorage(u, n, "static")
	}

	params := fd.ChildByFieldName("parameters")
	if params == nil {
		return f
	}
	for i := 0; i < int(params.ChildCount()); i++ {
		ch := params.Child(i)
		switch ch.Type() {
		case "(":
			if !ch.IsMissing() {
				f.Lparen = int(ch.StartByte())
			}
		case ")":
			if !ch.IsMissing() {
				f.Rparen = int(ch.StartByte())
			}
		case "...":
			f.Params = append(f.Params, &program.Param{Name: "...", Span: b.rng(u, ch), Variadic: true})
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			p := &program.Param{
				Span:     b.rng(u, ch),
				Variadic: ch.Type() == "variadic_parameter_declaration",
			}
			if id := declName(ch.ChildByFieldName("declarator")); id != nil {
				p.Name = text(u, id)
			}
			if dv := ch.ChildByFieldName("default_value"); dv != nil {
				p.Default = text(u, dv)
			}
			f.Params = append(f.Params, p)
		}
	}
	if len(f.Params) == 1 && isVoidParam(u, params) {
		f.Params = nil
		f.Void = true
	}
	return f
}

// isVoidParam reports whether the parameter list is (void).
func isVoidParam(u *unit, params *sitter.Node) bool {
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() == "comment" {
			continue
		}
		return p.Type() == "parameter_declaration" &&
			p.ChildByFieldName("declarator") == nil &&
			text(u, p.ChildByFieldName("type")) == "void"
	}
	return false
}

func (b *builder) addFunc(u *unit, n *sitter.Node, f *program.Func) {
	b.p.funcs = append(b.p.funcs, f)
	b.p.nodes = append(b.p.nodes, f)
	if f.Definition {
		b.funcAt[keyOf(u, n)] = f
	}
	if f.Method {
		if c := b.classes[f.Class]; c != nil {
			c.methods[f.Name] = append(c.methods[f.Name], f)
		}
		return
	}
	b.free[f.Name] = append(b.free[f.Name], f)
}

// mergeDefaults gives every declaration of a function the default
// arguments supplied by any other declaration of it.
// Declarations are the same function when they share a class, a name,
// and a parameter count.
func (b *builder) mergeDefaults() {
	type sig struct {
		class, name string
		n           int
	}
	groups := make(map[sig][]*program.Func)
	var order []sig
	for _, f := range b.p.funcs {
		k := sig{f.Class, f.Name, len(f.Params)}
		if groups[k] == nil {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}
	for _, k := range order {
		fs := groups[k]
		if len(fs) < 2 {
			continue
		}
		for i := 0; i < k.n; i++ {
			def := ""
			for _, f := range fs {
				if f.Params[i].Default != "" && !f.Params[i].Inherited {
					def = f.Params[i].Default
					break
				}
			}
			if def == "" {
				continue
			}
			for _, f := range fs {
				if f.Params[i].Default == "" {
					f.Params[i].Default = def
					f.Params[i].Inherited = true
				}
			}
		}
	}
}

// funcDeclarator returns the function_declarator that d declares
// through any pointer or reference declarators, or nil.
func funcDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			return d
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// innerDeclarator returns the declarator nested directly in d.
// A reference_declarator has no declarator field; its declarator
// is its last named child.
func innerDeclarator(d *sitter.Node) *sitter.Node {
	if in := d.ChildByFieldName("declarator"); in != nil {
		return in
	}
	if n := int(d.NamedChildCount()); n > 0 {
		return d.NamedChild(n - 1)
	}
	return nil
}

// declName returns the name node a declarator declares, or nil.
func declName(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function":
			return d
		case "pointer_declarator", "reference_declarator", "array_declarator",
			"init_declarator", "function_declarator", "parenthesized_declarator",
			"attributed_declarator", "variadic_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// typeName returns the class name named by a type node, or "".
func typeName(u *unit, t *sitter.Node) string {
	if t == nil {
		return ""
	}
	switch t.Type() {
	case "type_identifier":
		return text(u, t)
	case "qualified_identifier", "template_type", "class_specifier",
		"struct_specifier", "union_specifier":
		return typeName(u, t.ChildByFieldName("name"))
	}
	return ""
}

// splitQualified returns the scope text and innermost name node of
// a qualified identifier. The scope of ::name is "".
func splitQualified(u *unit, q *sitter.Node) (string, *sitter.Node) {
	var scope []string
	for q != nil && q.Type() == "qualified_identifier" {
		scope = append(scope, text(u, q.ChildByFieldName("scope")))
		q = q.ChildByFieldName("name")
	}
	if q != nil && q.Type() == "template_function" {
		q = q.ChildByFieldName("name")
	}
	return strings.Join(scope, "::"), q
}

func lastName(s string) string {
	if i := strings.LastIndex(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

// enclosingClass returns the name of the class whose member list
// contains n, or "".
func enclosingClass(u *unit, n *sitter.Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "field_declaration_list" {
			continue
		}
		if c := p.Parent(); c != nil {
			return lastName(text(u, c.ChildByFieldName("name")))
		}
		return ""
	}
	return ""
}

// atNamespaceScope reports whether declaration n is outside
// every function, class, and parameter list.
func atNamespaceScope(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "compound_statement", "function_definition", "field_declaration_list",
			"parameter_list", "lambda_expression", "condition_clause",
			"for_statement", "for_range_loop":
			return false
		}
	}
	return true
}

func inBody(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "compound_statement" {
			return true
		}
	}
	return false
}

// hasStorage reports whether declaration n carries the storage class kw.
func hasStorage(u *unit, n *sitter.Node, kw string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() == "storage_class_specifier" && text(u, ch) == kw {
			return true
		}
	}
	return false
}
