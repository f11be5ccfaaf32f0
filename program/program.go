// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package program defines the queryable model of a parsed program
// that refactorings run against.
//
// A backend (see program/cxx and program/golang) parses source text,
// resolves names, and exposes the result as a Program: a list of Files
// and the Nodes found in them, in document order. Nodes are declarations
// (Func, Var), call sites (Call), and variable references (Ref).
// Every Range in the model ends at the end of its last lexical token.
//
// Programs are read-only. Refactorings never modify them; they only
// propose edits.
package program

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// A Source is one input file handed to a backend.
type Source struct {
	Name   string
	Text   []byte
	System bool // vendored or system file; never edited
}

// A File is a source file of a Program.
type File struct {
	Name   string
	Text   []byte
	System bool

	tok *token.File
}

// NewFile adds a file to fset and returns it.
func NewFile(fset *token.FileSet, name string, text []byte, system bool) *File {
	tf := fset.AddFile(name, -1, len(text))
	tf.SetLinesForContent(text)
	return &File{Name: name, Text: text, System: system, tok: tf}
}

// WrapFile returns a File for a token.File that already has line information.
func WrapFile(tf *token.File, text []byte, system bool) *File {
	return &File{Name: tf.Name(), Text: text, System: system, tok: tf}
}

// Position returns the line and column of offset.
func (f *File) Position(offset int) token.Position {
	if f.tok == nil || offset < 0 || offset > f.tok.Size() {
		return token.Position{Filename: f.Name, Offset: offset}
	}
	return f.tok.Position(f.tok.Pos(offset))
}

// Slice returns the text of r, which must lie in f.
func (f *File) Slice(r Range) string {
	if r.Start < 0 || r.End > len(f.Text) || r.Start > r.End {
		return ""
	}
	return string(f.Text[r.Start:r.End])
}

// A Range is a span of bytes [Start, End) in File.
// End is always the offset just past the last token of the span.
type Range struct {
	File       string
	Start, End int
}

// IsValid reports whether r names a file and a non-negative span.
func (r Range) IsValid() bool {
	return r.File != "" && 0 <= r.Start && r.Start <= r.End
}

// Contains reports whether s lies within r.
func (r Range) Contains(s Range) bool {
	return r.File == s.File && r.Start <= s.Start && s.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%s:#%d,#%d", r.File, r.Start, r.End)
}

// A Node is an element of the program model.
type Node interface {
	Range() Range
	inSystemFile() bool
}

// A Func is a function or method declaration or definition.
type Func struct {
	Name       string
	Class      string // receiver type or enclosing class; "" for free functions
	Method     bool   // declared as a member of Class
	Static     bool   // static member: called without an object
	Span       Range  // the whole declaration
	NameSpan   Range
	Lparen     int // offset of the parameter list's opening delimiter
	Rparen     int // offset of the parameter list's closing delimiter
	Params     []*Param
	Void       bool // parameter list is the explicit "accepts nothing" marker
	Definition bool // has a body
	System     bool
}

func (f *Func) Range() Range       { return f.Span }
func (f *Func) inSystemFile() bool { return f.System }

// QualifiedName returns Class::Name for members and Name otherwise.
func (f *Func) QualifiedName() string {
	if f.Class == "" {
		return f.Name
	}
	return f.Class + "::" + f.Name
}

// MinArgs returns the number of arguments a call must supply.
func (f *Func) MinArgs() int {
	n := 0
	for _, p := range f.Params {
		if p.Default != "" || p.Variadic {
			break
		}
		n++
	}
	return n
}

// HasDefaults reports whether any parameter has a default value.
func (f *Func) HasDefaults() bool {
	return f.FirstDefault() >= 0
}

// FirstDefault returns the index of the first defaulted parameter, or -1.
func (f *Func) FirstDefault() int {
	for i, p := range f.Params {
		if p.Default != "" {
			return i
		}
	}
	return -1
}

// VariadicIndex returns the index of the variadic parameter, or -1.
func (f *Func) VariadicIndex() int {
	for i, p := range f.Params {
		if p.Variadic {
			return i
		}
	}
	return -1
}

func (f *Func) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	if f.Void {
		params = []string{"void"}
	}
	return fmt.Sprintf("%s(%s)", f.QualifiedName(), strings.Join(params, ", "))
}

// A Param is one formal parameter of a Func.
type Param struct {
	Name      string
	Span      Range
	Default   string // default value text; "" if none
	Inherited bool   // Default comes from another declaration of the function
	Variadic  bool
}

func (p *Param) String() string {
	s := p.Name
	if p.Variadic {
		s += "..."
	}
	if p.Default != "" {
		s += " = " + p.Default
	}
	return s
}

// A Call is a call site.
type Call struct {
	Name     string // callee name as written, without qualifiers
	Span     Range
	Bound    bool  // called through an object, pointer, reference, or implicit this
	Implicit bool  // bound through an implicit this
	Receiver Range // receiver expression of an explicitly bound call
	Args     []Range
	Lparen   int // offset of the argument list's opening delimiter; -1 if missing
	Rparen   int // offset of the closing delimiter; -1 if missing
	Callee   *Func
	Caller   *Func // enclosing function; nil at file scope
	System   bool
}

func (c *Call) Range() Range       { return c.Span }
func (c *Call) inSystemFile() bool { return c.System }

// A Var is a variable declaration.
type Var struct {
	Name   string
	Global bool // has global (namespace or package) storage
	Local  bool // declared inside a function, as a static local is
	Span   Range
	System bool
}

func (v *Var) Range() Range       { return v.Span }
func (v *Var) inSystemFile() bool { return v.System }

// A Ref is a reference to a variable.
type Ref struct {
	Name   string
	Span   Range // exact span of the reference, including any :: qualifier
	Var    *Var  // resolved declaration; nil for locals and unknown names
	Caller *Func // enclosing function; nil at file scope
	System bool
}

func (r *Ref) Range() Range       { return r.Span }
func (r *Ref) inSystemFile() bool { return r.System }

// A Program is a parsed, name-resolved program.
type Program interface {
	// Files returns the program's files in load order.
	Files() []*File

	// File returns the named file, or nil.
	File(name string) *File

	// Nodes returns all nodes in document order.
	Nodes() []Node
}

// Position returns the position of offset in the named file of p.
// A nil p yields a position with no line information.
func Position(p Program, file string, offset int) token.Position {
	var f *File
	if p != nil {
		f = p.File(file)
	}
	if f == nil {
		return token.Position{Filename: file, Offset: offset}
	}
	return f.Position(offset)
}

// SortNodes sorts nodes into document order: by file in the order of files,
// then by start offset, enclosing nodes before the nodes they contain.
func SortNodes(files []*File, nodes []Node) {
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f.Name] = i
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := nodes[i].Range(), nodes[j].Range()
		if ri.File != rj.File {
			return index[ri.File] < index[rj.File]
		}
		if ri.Start != rj.Start {
			return ri.Start < rj.Start
		}
		return ri.End > rj.End
	})
}
