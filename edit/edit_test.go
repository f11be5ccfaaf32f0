// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var overlapTests = []struct {
	a, b Edit
	want bool
}{
	{Insert("f", 3, "x"), Insert("f", 3, "y"), true},
	{Insert("f", 3, "x"), Insert("f", 4, "x"), false},
	{Insert("f", 3, "x"), Insert("g", 3, "x"), false},
	{Insert("f", 3, "x"), Replace("f", 2, 5, ""), true},
	{Insert("f", 2, "x"), Replace("f", 2, 5, ""), false},
	{Insert("f", 5, "x"), Replace("f", 2, 5, ""), false},
	{Replace("f", 2, 5, "a"), Replace("f", 4, 8, "b"), true},
	{Replace("f", 2, 5, "a"), Replace("f", 5, 8, "b"), false},
	{Replace("f", 2, 5, "a"), Replace("f", 2, 5, "b"), true},
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	for _, tt := range overlapTests {
		assert.Equal(t, tt.want, tt.a.Overlaps(tt.b), "%v overlaps %v", tt.a, tt.b)
		assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "%v overlaps %v", tt.b, tt.a)
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `input.cc: 29:+0:"boo"`, Insert("input.cc", 29, "boo").String())
	assert.Equal(t, `x.c: 4:+3:"a\n"`, Replace("x.c", 4, 7, "a\n").String())
}

func TestSetAddConflict(t *testing.T) {
	t.Parallel()

	s := NewSet("input.cc")
	require.NoError(t, s.Add(Insert("input.cc", 29, "boo")))

	err := s.Add(Insert("input.cc", 29, "boo"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 29, ce.Existing.Offset)
	assert.Equal(t, 1, s.Len())

	err = s.Add(Insert("other.cc", 1, "x"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, 1, s.Len())

	assert.Error(t, s.Add(Edit{File: "input.cc", Offset: -1}))
	assert.Equal(t, 1, s.Len())
}

func TestSetApply(t *testing.T) {
	t.Parallel()

	text := []byte("void f(int i){} void g(){f(1);}")
	s := NewSet("a.cc")
	require.NoError(t, s.Add(Insert("a.cc", 28, ", np")))
	require.NoError(t, s.Add(Insert("a.cc", 12, ", int np")))
	require.NoError(t, s.Add(Replace("a.cc", 0, 4, "int")))

	assert.Equal(t, []Edit{
		Replace("a.cc", 0, 4, "int"),
		Insert("a.cc", 12, ", int np"),
		Insert("a.cc", 28, ", np"),
	}, s.Sorted())
	assert.Equal(t, 28, s.Edits()[0].Offset)

	out, err := s.Apply(text)
	require.NoError(t, err)
	assert.Equal(t, "int f(int i, int np){} void g(){f(1, np);}", string(out))

	bad := NewSet("a.cc")
	require.NoError(t, bad.Add(Insert("a.cc", 100, "x")))
	_, err = bad.Apply(text)
	assert.Error(t, err)
}

func TestSets(t *testing.T) {
	t.Parallel()

	m := make(Sets)
	require.NoError(t, m.Add(Insert("b.cc", 1, "x")))
	require.NoError(t, m.Add(Insert("a.cc", 1, "x")))
	require.NoError(t, m.Add(Insert("a.cc", 2, "y")))
	assert.True(t, errors.Is(m.Add(Insert("a.cc", 2, "z")), ErrConflict))

	assert.Equal(t, []string{"a.cc", "b.cc"}, m.Files())
	assert.Equal(t, 3, m.Len())
	assert.Nil(t, m.For("c.cc"))
	assert.Equal(t, []Edit{
		Insert("a.cc", 1, "x"),
		Insert("a.cc", 2, "y"),
		Insert("b.cc", 1, "x"),
	}, m.All())

	require.NoError(t, m.Add(Insert("b.cc", 0, "w")))
	assert.Equal(t, []Edit{
		Insert("a.cc", 1, "x"),
		Insert("a.cc", 2, "y"),
		Insert("b.cc", 0, "w"),
		Insert("b.cc", 1, "x"),
	}, m.Sorted())

	// A rejected first edit must not leave an empty set behind.
	assert.Error(t, m.Add(Edit{File: "c.cc", Offset: -2}))
	assert.Nil(t, m.For("c.cc"))
}
