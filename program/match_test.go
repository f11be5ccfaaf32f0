// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package program

import (
	"errors"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProgram struct {
	files []*File
	nodes []Node
}

func (p *staticProgram) Files() []*File { return p.files }

func (p *staticProgram) File(name string) *File {
	for _, f := range p.files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *staticProgram) Nodes() []Node { return p.nodes }

// testProgram models
//
//	int g;
//	void h();
//	struct S { void h(); };
//	void k(S &s) { h(); s.h(); g = 1; }
//
// with a second, system file calling h.
func testProgram() (*staticProgram, map[string]Node) {
	fset := token.NewFileSet()
	src := "int g; void h(); struct S { void h(); }; void k(S &s) { h(); s.h(); g = 1; }"
	main := NewFile(fset, "a.cc", []byte(src), false)
	sys := NewFile(fset, "sys.h", []byte("void q() { h(); }"), true)

	r := func(file string, start, end int) Range { return Range{File: file, Start: start, End: end} }
	g := &Var{Name: "g", Global: true, Span: r("a.cc", 0, 5)}
	h := &Func{Name: "h", Span: r("a.cc", 7, 15), Lparen: 13, Rparen: 14}
	sh := &Func{Name: "h", Class: "S", Method: true, Span: r("a.cc", 28, 36), Lparen: 34, Rparen: 35}
	k := &Func{Name: "k", Span: r("a.cc", 41, 77), Definition: true,
		Params: []*Param{{Name: "s", Span: r("a.cc", 48, 52)}}}
	q := &Func{Name: "q", Span: r("sys.h", 0, 17), Definition: true, System: true}
	call := &Call{Name: "h", Span: r("a.cc", 56, 59), Lparen: 57, Rparen: 58, Callee: h, Caller: k}
	mcall := &Call{Name: "h", Span: r("a.cc", 61, 66), Bound: true, Receiver: r("a.cc", 61, 62),
		Lparen: 64, Rparen: 65, Callee: sh, Caller: k}
	ref := &Ref{Name: "g", Span: r("a.cc", 68, 69), Var: g, Caller: k}
	syscall := &Call{Name: "h", Span: r("sys.h", 11, 14), Lparen: 12, Rparen: 13, Callee: h, Caller: q, System: true}

	nodes := []Node{syscall, ref, mcall, call, k, sh, h, g, q}
	p := &staticProgram{files: []*File{main, sys}, nodes: nodes}
	SortNodes(p.files, p.nodes)
	return p, map[string]Node{
		"g": g, "h": h, "S::h": sh, "k": k, "q": q,
		"call": call, "mcall": mcall, "ref": ref, "syscall": syscall,
	}
}

func TestSortNodes(t *testing.T) {
	t.Parallel()
	p, n := testProgram()
	assert.Equal(t, []Node{n["g"], n["h"], n["S::h"], n["k"], n["call"], n["mcall"], n["ref"], n["q"], n["syscall"]}, p.Nodes())
}

func TestFreeAndBoundCallMatchers(t *testing.T) {
	t.Parallel()
	p, n := testProgram()

	free := CallExpr(
		Unless(IsExpansionInSystemFile()),
		DirectCallee(FunctionDecl(HasName("h")).Bind("callee")),
	).Bind("callsite")
	got := Query(p, free)
	require.Len(t, got, 1)
	assert.Same(t, n["call"], got[0].Call("callsite"))
	assert.Same(t, n["h"], got[0].Func("callee"))

	bound := MemberCallExpr(Callee(MethodDecl(HasName("h")).Bind("callee"))).Bind("callsite")
	got = Query(p, bound)
	require.Len(t, got, 1)
	assert.Same(t, n["mcall"], got[0].Call("callsite"))
	assert.Same(t, n["S::h"], got[0].Func("callee"))

	// Without the system filter the call in sys.h matches too.
	got = Query(p, CallExpr(DirectCallee(FunctionDecl(HasName("h")))))
	assert.Len(t, got, 2)
}

func TestHasNameQualified(t *testing.T) {
	t.Parallel()
	p, n := testProgram()

	got := Query(p, FunctionDecl(HasName("S::h")).Bind("decl"))
	require.Len(t, got, 1)
	assert.Same(t, n["S::h"], got[0].Func("decl"))

	got = Query(p, FunctionDecl(HasName("h")).Bind("decl"))
	assert.Len(t, got, 2)

	got = Query(p, FreeFunctionDecl(HasName("h")))
	assert.Len(t, got, 1)
}

func TestGlobalRefMatcher(t *testing.T) {
	t.Parallel()
	p, n := testProgram()

	m := DeclRefExpr(
		To(VarDecl(HasGlobalStorage(), HasName("g"))),
		HasAncestor(FunctionDecl().Bind("caller")),
	).Bind("ref")
	got := Query(p, m)
	require.Len(t, got, 1)
	assert.Same(t, n["ref"], got[0].Ref("ref"))
	assert.Same(t, n["k"], got[0].Func("caller"))
	assert.Nil(t, got[0].Call("ref"))
}

func TestHasNamespaceScope(t *testing.T) {
	t.Parallel()
	global := &Var{Name: "NR", Global: true}
	static := &Var{Name: "NR", Global: true, Local: true}
	m := VarDecl(HasGlobalStorage(), HasNamespaceScope())
	assert.True(t, m.Match(global, make(Binding)))
	assert.False(t, m.Match(static, make(Binding)))
	assert.True(t, VarDecl(HasGlobalStorage()).Match(static, make(Binding)))
}

func TestBindingRollback(t *testing.T) {
	t.Parallel()
	_, n := testProgram()

	// The first alternative binds "decl" and then fails; its binding must not leak.
	m := AnyOf(
		AllOf(Callee(FunctionDecl().Bind("decl")), HasName("nope")),
		Callee(FunctionDecl(HasName("h")).Bind("other")),
	)
	b := make(Binding)
	require.True(t, m.Match(n["call"], b))
	assert.NotContains(t, b, "decl")
	assert.Contains(t, b, "other")

	b = make(Binding)
	assert.False(t, CallExpr(Callee(FunctionDecl().Bind("decl")), HasName("nope")).Bind("c").Match(n["call"], b))
	assert.Empty(t, b)

	b = make(Binding)
	require.True(t, CallExpr(Optionally(HasAncestor(FunctionDecl(HasName("zz")).Bind("caller")))).Match(n["call"], b))
	assert.Empty(t, b)
}

func TestNilCalleeNeverMatches(t *testing.T) {
	t.Parallel()
	c := &Call{Name: "unknown", Span: Range{File: "a.cc", Start: 0, End: 9}}
	assert.False(t, CallExpr(Callee(FunctionDecl())).Match(c, make(Binding)))
	assert.False(t, FunctionDecl().Match((*Func)(nil), make(Binding)))
}

func TestFind(t *testing.T) {
	t.Parallel()
	p, n := testProgram()

	got := Find(p,
		CallExpr(Callee(MethodDecl())),
		CallExpr(HasName("h")),
	)
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 0, 1, 1}, []int{got[0].Matcher, got[1].Matcher, got[2].Matcher, got[3].Matcher})
	assert.Same(t, n["call"], got[0].Node)
	assert.Same(t, n["mcall"], got[1].Node)
	assert.Same(t, n["syscall"], got[3].Node)
}

func TestMatcherString(t *testing.T) {
	t.Parallel()
	m := CallExpr(Unless(IsExpansionInSystemFile()), DirectCallee(FunctionDecl(HasName("f")).Bind("callee"))).Bind("callsite")
	assert.Equal(t, `callExpr(unless(isExpansionInSystemFile()), directCallee(functionDecl(hasName("f")).bind("callee"))).bind("callsite")`, m.String())
}

func TestFilePosition(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	f := NewFile(fset, "x.cc", []byte("int a;\nvoid f();\n"), false)
	pos := f.Position(12)
	assert.Equal(t, "x.cc", pos.Filename)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 6, pos.Column)
	assert.Equal(t, "f", f.Slice(Range{File: "x.cc", Start: 12, End: 13}))
	assert.Equal(t, "", f.Slice(Range{File: "x.cc", Start: 12, End: 100}))
	bad := f.Position(1000)
	assert.False(t, bad.IsValid())
}

func TestParseError(t *testing.T) {
	t.Parallel()
	inner := errors.New("unexpected EOF")
	err := error(NewParseError("a.cc", "parsing: %w", inner))
	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "a.cc: parsing: unexpected EOF", err.Error())
}
