// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package program

import (
	"errors"

	"golang.org/x/xerrors"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// A ParseError reports that a program could not be built.
// It is fatal: no matching happens on a program that failed to build.
type ParseError struct {
	File string
	Err  error
}

// NewParseError returns a ParseError for file.
// The underlying error records the caller's frame for %+v formatting.
func NewParseError(file, format string, args ...any) *ParseError {
	return &ParseError{File: file, Err: xerrors.Errorf(format, args...)}
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return e.Err.Error()
	}
	return e.File + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
