// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "fmt"

// errUsage reports a malformed command line. It does not depend on the
// sources being rewritten, and main answers it with the usage text.
type errUsage struct {
	msg string
}

func newErrUsage(format string, args ...any) *errUsage {
	return &errUsage{fmt.Sprintf(format, args...)}
}

func (e *errUsage) Error() string {
	return "usage: " + e.msg
}

// errPrecondition reports a well-formed command that cannot run as given:
// -gvar and -lvar lists of different lengths, or no sources to load.
type errPrecondition struct {
	msg string
}

func newErrPrecondition(format string, args ...any) *errPrecondition {
	return &errPrecondition{fmt.Sprintf(format, args...)}
}

func (e *errPrecondition) Error() string {
	return e.msg
}
