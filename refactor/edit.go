// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"rsc.io/xpnd/diff"
	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
)

// Apply returns the new text of every file of p that sets changes.
// Edits to files p does not know, or to system files, are errors.
func Apply(p program.Program, sets edit.Sets) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, name := range sets.Files() {
		f := p.File(name)
		if f == nil {
			return nil, fmt.Errorf("edit to unknown file %s", name)
		}
		if f.System {
			return nil, fmt.Errorf("edit to system file %s", name)
		}
		text, err := sets.For(name).Apply(f.Text)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(text, f.Text) {
			out[name] = text
		}
	}
	return out, nil
}

// changedFiles returns the names in m grouped by directory.
func changedFiles(m map[string][]byte) []string {
	names := slices.Collect(maps.Keys(m))
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(filepath.Dir(a), filepath.Dir(b)), cmp.Compare(a, b))
	})
	return names
}

// Diff returns a unified diff of the changes sets makes to p,
// with file names shown relative to dir when that is shorter.
func Diff(p program.Program, sets edit.Sets, dir string) ([]byte, error) {
	news, err := Apply(p, sets)
	if err != nil {
		return nil, err
	}
	var diffs []byte
	for _, name := range changedFiles(news) {
		rel := displayName(dir, name)
		d, err := diff.Diff("old/"+rel, p.File(name).Text, "new/"+rel, news[name])
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, d...)
	}
	return diffs, nil
}

// Write applies sets to p and writes the changed files,
// reporting each failure to stderr.
func Write(p program.Program, sets edit.Sets, stderr io.Writer) error {
	news, err := Apply(p, sets)
	if err != nil {
		return err
	}
	failed := false
	for _, name := range changedFiles(news) {
		if err := os.WriteFile(name, news[name], 0666); err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("errors writing files")
	}
	return nil
}

// displayName names file relative to dir when that is shorter.
func displayName(dir, file string) string {
	if dir != "" && filepath.IsAbs(file) {
		if rel, err := filepath.Rel(dir, file); err == nil && len(rel) < len(file) {
			return rel
		}
	}
	return file
}
