// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package golang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/xpnd/program"
)

const src = `package demo

import "os"

var NR, NB int

type S struct{ n int }

func (s *S) h(x int) { s.n = x }

func h(x int) {}

func logf(format string, args ...any) {}

func k(s S, ps *S) {
	h(1)
	s.h(2)
	ps.h(3)
	(*S).h(ps, 4)
	logf("%d %d", NR, NB)
	_ = int64(NR)
	n := NB
	_ = os.Args
	_ = n
}
`

func load(t *testing.T) (*Program, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/demo\n\ngo 1.22\n"), 0o666))
	name := filepath.Join(dir, "demo.go")
	require.NoError(t, os.WriteFile(name, []byte(src), 0o666))
	p, err := Load(dir)
	require.NoError(t, err)
	return p, name
}

func TestLoad(t *testing.T) {
	p, name := load(t)
	assert.Equal(t, "example.com/demo", p.ModPath)
	require.Len(t, p.Files(), 1)
	f := p.File(name)
	require.NotNil(t, f)
	assert.False(t, f.System)

	type call struct {
		text   string
		callee string
		bound  bool
	}
	var got []call
	for _, c := range p.Calls() {
		cn := ""
		if c.Callee != nil {
			cn = c.Callee.QualifiedName()
		}
		got = append(got, call{f.Slice(c.Span), cn, c.Bound})
	}
	assert.Equal(t, []call{
		{"h(1)", "h", false},
		{"s.h(2)", "S::h", true},
		{"ps.h(3)", "S::h", true},
		{"(*S).h(ps, 4)", "S::h", false},
		{`logf("%d %d", NR, NB)`, "logf", false},
	}, got)
}

func TestParams(t *testing.T) {
	p, name := load(t)
	f := p.File(name)
	var logf *program.Func
	for _, fn := range p.Funcs() {
		if fn.Name == "logf" {
			logf = fn
		}
	}
	require.NotNil(t, logf)
	require.Len(t, logf.Params, 2)
	assert.Equal(t, 1, logf.VariadicIndex())
	assert.Equal(t, "format string", f.Slice(logf.Params[0].Span))
	assert.Equal(t, "args ...any", f.Slice(logf.Params[1].Span))
	assert.Equal(t, "(", string(f.Text[logf.Lparen]))
	assert.Equal(t, ")", string(f.Text[logf.Rparen]))
	assert.False(t, logf.HasDefaults())
}

func TestGlobalRefs(t *testing.T) {
	p, name := load(t)
	f := p.File(name)
	var got []string
	for _, r := range p.Refs() {
		got = append(got, f.Slice(r.Span))
		assert.Equal(t, "k", r.Caller.Name)
	}
	assert.Equal(t, []string{"NR", "NB", "NR", "NB", "os.Args"}, got)
	require.Len(t, p.Vars(), 2)
	assert.Same(t, p.Vars()[0], p.Refs()[0].Var)
	assert.True(t, p.Refs()[4].Var.System)
}

func TestLoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/bad\n"), 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.go"), []byte("package bad\nfunc f( {\n"), 0o666))
	_, err := Load(dir)
	assert.ErrorIs(t, err, program.ErrParse)
}

func TestIsSystem(t *testing.T) {
	p := &Program{ModRoot: filepath.FromSlash("/m")}
	assert.False(t, p.isSystem(filepath.FromSlash("/m/a.go")))
	assert.True(t, p.isSystem(filepath.FromSlash("/m/vendor/x/a.go")))
	assert.True(t, p.isSystem(filepath.FromSlash("/other/a.go")))
}
