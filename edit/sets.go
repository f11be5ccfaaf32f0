// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edit

import (
	"sort"

	"github.com/go-analyze/bulk"
)

// Sets maps file names to the Set of edits for that file.
// The zero value is not usable; make one with make(Sets).
type Sets map[string]*Set

// Add adds e to the set for e.File, creating it if needed.
func (m Sets) Add(e Edit) error {
	s := m[e.File]
	if s == nil {
		s = NewSet(e.File)
		if err := s.Add(e); err != nil {
			return err
		}
		m[e.File] = s
		return nil
	}
	return s.Add(e)
}

// For returns the set for file, or nil.
func (m Sets) For(file string) *Set {
	return m[file]
}

// Files returns the names of files with at least one edit, sorted.
func (m Sets) Files() []string {
	names := bulk.SliceFilter(func(name string) bool {
		return m[name].Len() > 0
	}, bulk.MapKeysSlice(m))
	sort.Strings(names)
	return names
}

// Len returns the total number of edits in all sets.
func (m Sets) Len() int {
	n := 0
	for _, s := range m {
		n += s.Len()
	}
	return n
}

// Sorted returns every edit, ordered by file name and then by offset
// as in Set.Sorted.
func (m Sets) Sorted() []Edit {
	var list []Edit
	for _, name := range m.Files() {
		list = append(list, m[name].Sorted()...)
	}
	return list
}

// All returns every edit, grouped by file in name order
// and in acceptance order within a file.
func (m Sets) All() []Edit {
	var list []Edit
	for _, name := range m.Files() {
		list = append(list, m[name].Edits()...)
	}
	return list
}
