// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
	"rsc.io/xpnd/program/cxx"
)

func TestApplyErrors(t *testing.T) {
	p, err := cxx.Build(context.Background(), []program.Source{
		{Name: "sys.h", Text: []byte("void f();"), System: true},
		{Name: input, Text: []byte("void g();")},
	}, nil)
	require.NoError(t, err)

	sets := make(edit.Sets)
	require.NoError(t, sets.Add(edit.Insert("sys.h", 7, "int")))
	_, err = Apply(p, sets)
	assert.EqualError(t, err, "edit to system file sys.h")

	sets = make(edit.Sets)
	require.NoError(t, sets.Add(edit.Insert("nope.cc", 0, "x")))
	_, err = Apply(p, sets)
	assert.EqualError(t, err, "edit to unknown file nope.cc")

	sets = make(edit.Sets)
	require.NoError(t, sets.Add(edit.Replace(input, 5, 50, "x")))
	_, err = Apply(p, sets)
	assert.Error(t, err)
}

func TestDiffAndWrite(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "x.cc")
	src := "void f(int a);\nvoid g() { f(1); }\n"
	require.NoError(t, os.WriteFile(name, []byte(src), 0o666))
	p, err := cxx.Build(context.Background(), []program.Source{{Name: name, Text: []byte(src)}}, nil)
	require.NoError(t, err)

	sig, calls := NewExpander(TargetSpec{Names: Targets("f"), NewText: "int np"}, "np")
	sig.Run(p)
	calls.Run(p)
	sets := calls.Replacements()

	d, err := Diff(p, sets, dir)
	require.NoError(t, err)
	assert.Equal(t, `diff old/x.cc new/x.cc
--- old/x.cc
+++ new/x.cc
@@ -1,2 +1,2 @@
-void f(int a);
-void g() { f(1); }
+void f(int a, int np);
+void g() { f(1, np); }
`, string(d))

	var stderr bytes.Buffer
	require.NoError(t, Write(p, sets, &stderr))
	assert.Empty(t, stderr.String())
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "void f(int a, int np);\nvoid g() { f(1, np); }\n", string(data))
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "a/b.cc", displayName("/x", "/x/a/b.cc"))
	assert.Equal(t, "/y/b.cc", displayName("/x/z/w", "/y/b.cc"))
	assert.Equal(t, "rel.cc", displayName("/x", "rel.cc"))
	assert.Equal(t, "/x/a.cc", displayName("", "/x/a.cc"))
}
