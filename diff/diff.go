// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff renders unified diffs of file texts.
package diff

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Context is the number of unchanged lines shown around each change.
const Context = 3

// Diff returns a unified diff of old and new, headed by a
// "diff oldName newName" line. It returns nil when the texts are equal.
func Diff(oldName string, old []byte, newName string, new []byte) ([]byte, error) {
	if bytes.Equal(old, new) {
		return nil, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: oldName,
		ToFile:   newName,
		Context:  Context,
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "diff %s %s\n", oldName, newName)
	if err := difflib.WriteUnifiedDiff(&buf, ud); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
