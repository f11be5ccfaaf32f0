// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package edit implements textual edits to source files.
//
// An Edit replaces the bytes [Offset, Offset+Length) of one file with Text.
// A Set collects the edits for a single file and rejects any edit whose
// range overlaps one it has already accepted, so that a finished Set can
// always be applied without ambiguity.
package edit

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// An Edit is a single textual replacement instruction.
// A zero Length denotes a pure insertion before the byte at Offset;
// a non-zero Length with empty Text denotes a deletion.
type Edit struct {
	File   string
	Offset int
	Length int
	Text   string
}

// Insert returns an edit inserting text at offset.
func Insert(file string, offset int, text string) Edit {
	return Edit{File: file, Offset: offset, Text: text}
}

// Replace returns an edit replacing [start, end) with text.
func Replace(file string, start, end int, text string) Edit {
	return Edit{File: file, Offset: start, Length: end - start, Text: text}
}

// End returns the offset just past the replaced range.
func (e Edit) End() int { return e.Offset + e.Length }

// IsInsert reports whether e replaces no existing text.
func (e Edit) IsInsert() bool { return e.Length == 0 }

// Valid reports whether e has a file name and a non-negative range.
func (e Edit) Valid() bool {
	return e.File != "" && e.Offset >= 0 && e.Length >= 0
}

// Overlaps reports whether e and f touch the same bytes of the same file.
//
// Ranges are half-open. Two insertions conflict only when they are at the
// same offset; an insertion conflicts with a replacement when it falls
// strictly inside the replaced range.
func (e Edit) Overlaps(f Edit) bool {
	if e.File != f.File {
		return false
	}
	switch {
	case e.Length == 0 && f.Length == 0:
		return e.Offset == f.Offset
	case e.Length == 0:
		return f.Offset < e.Offset && e.Offset < f.End()
	case f.Length == 0:
		return e.Offset < f.Offset && f.Offset < e.End()
	}
	return e.Offset < f.End() && f.Offset < e.End()
}

// String formats e as file: offset:+length:"text".
func (e Edit) String() string {
	return fmt.Sprintf("%s: %d:+%d:%s", e.File, e.Offset, e.Length, strconv.Quote(e.Text))
}

// ErrConflict is matched by every ConflictError.
var ErrConflict = errors.New("edit conflict")

// A ConflictError reports that New was not added to a Set
// because it overlaps the already accepted Existing.
type ConflictError struct {
	New      Edit
	Existing Edit
}

func (e *ConflictError) Error() string {
	if e.New.File != e.Existing.File {
		return fmt.Sprintf("edit for %s offered to set for %s", e.New.File, e.Existing.File)
	}
	return fmt.Sprintf("%s: edit %d:+%d conflicts with %d:+%d", e.New.File,
		e.New.Offset, e.New.Length, e.Existing.Offset, e.Existing.Length)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// A Set is the ordered collection of accepted edits for one file.
// No two edits in a Set overlap.
type Set struct {
	file  string
	edits []Edit
}

// NewSet returns an empty set for the named file.
func NewSet(file string) *Set {
	return &Set{file: file}
}

// File returns the name of the file the set edits.
func (s *Set) File() string { return s.file }

// Len returns the number of accepted edits.
func (s *Set) Len() int { return len(s.edits) }

// Add adds e to the set. If e overlaps an accepted edit, or edits a
// different file, Add returns a *ConflictError and leaves s unchanged.
func (s *Set) Add(e Edit) error {
	if !e.Valid() {
		return fmt.Errorf("invalid edit %v", e)
	}
	if e.File != s.file {
		return &ConflictError{New: e, Existing: Edit{File: s.file}}
	}
	for _, old := range s.edits {
		if e.Overlaps(old) {
			return &ConflictError{New: e, Existing: old}
		}
	}
	s.edits = append(s.edits, e)
	return nil
}

// Edits returns the accepted edits in the order they were added.
func (s *Set) Edits() []Edit {
	return append([]Edit(nil), s.edits...)
}

// Sorted returns the accepted edits ordered by offset.
// Insertions sort before a replacement starting at the same offset.
func (s *Set) Sorted() []Edit {
	list := s.Edits()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Offset != list[j].Offset {
			return list[i].Offset < list[j].Offset
		}
		return list[i].Length < list[j].Length
	})
	return list
}

// Apply returns the result of applying the set to text.
func (s *Set) Apply(text []byte) ([]byte, error) {
	var out []byte
	last := 0
	for _, e := range s.Sorted() {
		if e.End() > len(text) {
			return nil, fmt.Errorf("%s: edit %d:+%d beyond end of file (%d bytes)", s.file, e.Offset, e.Length, len(text))
		}
		out = append(out, text[last:e.Offset]...)
		out = append(out, e.Text...)
		last = e.End()
	}
	out = append(out, text[last:]...)
	return out, nil
}
