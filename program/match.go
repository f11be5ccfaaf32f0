// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package program

import (
	"fmt"
	"strings"
)

// A Binding maps slot names chosen by a query to the nodes they matched.
type Binding map[string]Node

// Call returns the call bound to slot, or nil.
func (b Binding) Call(slot string) *Call {
	c, _ := b[slot].(*Call)
	return c
}

// Func returns the function bound to slot, or nil.
func (b Binding) Func(slot string) *Func {
	f, _ := b[slot].(*Func)
	return f
}

// Ref returns the reference bound to slot, or nil.
func (b Binding) Ref(slot string) *Ref {
	r, _ := b[slot].(*Ref)
	return r
}

// Var returns the variable bound to slot, or nil.
func (b Binding) Var(slot string) *Var {
	v, _ := b[slot].(*Var)
	return v
}

func (b Binding) clone() Binding {
	c := make(Binding, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

func (b Binding) merge(c Binding) {
	for k, v := range c {
		b[k] = v
	}
}

// A Matcher is a structural predicate over nodes.
// Match reports whether n matches; on success it records the
// matcher's bound slots in b, and on failure it leaves b unchanged.
type Matcher interface {
	Match(n Node, b Binding) bool
	String() string
}

// A NodeMatcher matches one kind of node whose inner matchers all match.
type NodeMatcher struct {
	kind  string
	test  func(Node) bool
	inner []Matcher
	slot  string
}

// Bind returns a copy of m that binds the matched node to slot.
func (m *NodeMatcher) Bind(slot string) *NodeMatcher {
	c := *m
	c.slot = slot
	return &c
}

func (m *NodeMatcher) Match(n Node, b Binding) bool {
	if isNil(n) || !m.test(n) {
		return false
	}
	tmp := b.clone()
	for _, in := range m.inner {
		if !in.Match(n, tmp) {
			return false
		}
	}
	if m.slot != "" {
		tmp[m.slot] = n
	}
	b.merge(tmp)
	return true
}

func (m *NodeMatcher) String() string {
	s := m.kind + "(" + join(m.inner) + ")"
	if m.slot != "" {
		s += fmt.Sprintf(".bind(%q)", m.slot)
	}
	return s
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Func:
		return n == nil
	case *Call:
		return n == nil
	case *Var:
		return n == nil
	case *Ref:
		return n == nil
	}
	return false
}

func join(ms []Matcher) string {
	var list []string
	for _, m := range ms {
		list = append(list, m.String())
	}
	return strings.Join(list, ", ")
}

// CallExpr matches any call.
func CallExpr(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "callExpr", inner: inner, test: func(n Node) bool {
		_, ok := n.(*Call)
		return ok
	}}
}

// MemberCallExpr matches calls made through an object, pointer, or
// reference receiver, including an implicit this.
func MemberCallExpr(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "memberCallExpr", inner: inner, test: func(n Node) bool {
		c, ok := n.(*Call)
		return ok && c.Bound
	}}
}

// FunctionDecl matches any function declaration, methods included.
func FunctionDecl(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "functionDecl", inner: inner, test: func(n Node) bool {
		_, ok := n.(*Func)
		return ok
	}}
}

// FreeFunctionDecl matches function declarations that are not members.
func FreeFunctionDecl(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "freeFunctionDecl", inner: inner, test: func(n Node) bool {
		f, ok := n.(*Func)
		return ok && !f.Method
	}}
}

// MethodDecl matches member function declarations.
func MethodDecl(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "methodDecl", inner: inner, test: func(n Node) bool {
		f, ok := n.(*Func)
		return ok && f.Method
	}}
}

// DeclRefExpr matches variable references.
func DeclRefExpr(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "declRefExpr", inner: inner, test: func(n Node) bool {
		_, ok := n.(*Ref)
		return ok
	}}
}

// VarDecl matches variable declarations.
func VarDecl(inner ...Matcher) *NodeMatcher {
	return &NodeMatcher{kind: "varDecl", inner: inner, test: func(n Node) bool {
		_, ok := n.(*Var)
		return ok
	}}
}

// A predicate is a Matcher that binds nothing of its own.
type predicate struct {
	desc string
	fn   func(n Node, b Binding) bool
}

func (p *predicate) Match(n Node, b Binding) bool {
	if isNil(n) {
		return false
	}
	return p.fn(n, b)
}

func (p *predicate) String() string { return p.desc }

// HasName matches functions, variables, calls, and references with the
// given name. A name containing "::" must match the qualified name of a
// member function.
func HasName(name string) Matcher {
	return &predicate{fmt.Sprintf("hasName(%q)", name), func(n Node, b Binding) bool {
		switch n := n.(type) {
		case *Func:
			if strings.Contains(name, "::") {
				q := n.QualifiedName()
				return q == strings.TrimPrefix(name, "::") || strings.HasSuffix(q, "::"+strings.TrimPrefix(name, "::"))
			}
			return n.Name == name
		case *Var:
			return n.Name == name
		case *Call:
			return n.Name == name
		case *Ref:
			return n.Name == name
		}
		return false
	}}
}

// Unless matches when m does not.
func Unless(m Matcher) Matcher {
	return &predicate{"unless(" + m.String() + ")", func(n Node, b Binding) bool {
		return !m.Match(n, b.clone())
	}}
}

// AllOf matches when every matcher matches.
func AllOf(ms ...Matcher) Matcher {
	return &predicate{"allOf(" + join(ms) + ")", func(n Node, b Binding) bool {
		tmp := b.clone()
		for _, m := range ms {
			if !m.Match(n, tmp) {
				return false
			}
		}
		b.merge(tmp)
		return true
	}}
}

// AnyOf matches when some matcher matches, keeping the bindings of the first.
func AnyOf(ms ...Matcher) Matcher {
	return &predicate{"anyOf(" + join(ms) + ")", func(n Node, b Binding) bool {
		for _, m := range ms {
			if m.Match(n, b) {
				return true
			}
		}
		return false
	}}
}

// Optionally always matches, adding m's bindings when m matches.
func Optionally(m Matcher) Matcher {
	return &predicate{"optionally(" + m.String() + ")", func(n Node, b Binding) bool {
		m.Match(n, b)
		return true
	}}
}

// IsExpansionInSystemFile matches nodes in system or vendored files.
func IsExpansionInSystemFile() Matcher {
	return &predicate{"isExpansionInSystemFile()", func(n Node, b Binding) bool {
		return n.inSystemFile()
	}}
}

// HasGlobalStorage matches variables with global storage.
func HasGlobalStorage() Matcher {
	return &predicate{"hasGlobalStorage()", func(n Node, b Binding) bool {
		v, ok := n.(*Var)
		return ok && v.Global
	}}
}

// HasNamespaceScope matches variables declared at namespace or package
// scope. Static locals have global storage but not namespace scope.
func HasNamespaceScope() Matcher {
	return &predicate{"hasNamespaceScope()", func(n Node, b Binding) bool {
		v, ok := n.(*Var)
		return ok && v.Global && !v.Local
	}}
}

// IsDefinition matches functions with a body.
func IsDefinition() Matcher {
	return &predicate{"isDefinition()", func(n Node, b Binding) bool {
		f, ok := n.(*Func)
		return ok && f.Definition
	}}
}

// Callee matches calls whose resolved callee matches m.
func Callee(m Matcher) Matcher {
	return &predicate{"callee(" + m.String() + ")", func(n Node, b Binding) bool {
		c, ok := n.(*Call)
		return ok && c.Callee != nil && m.Match(c.Callee, b)
	}}
}

// DirectCallee matches calls that reach their callee through a direct
// reference rather than through an object, and whose callee matches m.
func DirectCallee(m Matcher) Matcher {
	return &predicate{"directCallee(" + m.String() + ")", func(n Node, b Binding) bool {
		c, ok := n.(*Call)
		return ok && !c.Bound && c.Callee != nil && m.Match(c.Callee, b)
	}}
}

// To matches references whose resolved declaration matches m.
func To(m Matcher) Matcher {
	return &predicate{"to(" + m.String() + ")", func(n Node, b Binding) bool {
		r, ok := n.(*Ref)
		return ok && r.Var != nil && m.Match(r.Var, b)
	}}
}

// HasAncestor matches calls and references whose enclosing function matches m.
func HasAncestor(m Matcher) Matcher {
	return enclosing("hasAncestor", m)
}

// Caller is HasAncestor under the name used for call sites.
func Caller(m Matcher) Matcher {
	return enclosing("caller", m)
}

func enclosing(kind string, m Matcher) Matcher {
	return &predicate{kind + "(" + m.String() + ")", func(n Node, b Binding) bool {
		var caller *Func
		switch n := n.(type) {
		case *Call:
			caller = n.Caller
		case *Ref:
			caller = n.Caller
		}
		return caller != nil && m.Match(caller, b)
	}}
}

// Query returns the bindings of every node of p that m matches,
// in document order.
func Query(p Program, m Matcher) []Binding {
	var out []Binding
	for _, n := range p.Nodes() {
		b := make(Binding)
		if m.Match(n, b) {
			out = append(out, b)
		}
	}
	return out
}

// A Match is one match event: matcher ms[Matcher] matched Node.
type Match struct {
	Matcher int
	Node    Node
	Binding Binding
}

// Find evaluates all matchers in one traversal of p.
// Events are in document order; at a single node, matchers fire in
// the order given.
func Find(p Program, ms ...Matcher) []Match {
	var out []Match
	for _, n := range p.Nodes() {
		for i, m := range ms {
			b := make(Binding)
			if m.Match(n, b) {
				out = append(out, Match{Matcher: i, Node: n, Binding: b})
			}
		}
	}
	return out
}
