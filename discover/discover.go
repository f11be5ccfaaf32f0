// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package discover finds C++ source files in a directory tree.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Extensions are the file name extensions of C++ sources and headers.
var Extensions = map[string]struct{}{
	".cc": {}, ".cpp": {}, ".cxx": {}, ".c++": {}, ".C": {},
	".h": {}, ".hh": {}, ".hpp": {}, ".hxx": {}, ".h++": {}, ".inl": {},
}

var skipDirs = map[string]struct{}{
	"build":        {},
	"node_modules": {},
	"third_party":  {},
	"vendor":       {},
}

// Files returns the C++ files under root, as root joined with the
// file's relative path, sorted. Hidden files and directories, common
// build and vendor directories, symlinks, and paths matched by
// root/.gitignore are skipped.
func Files(root string) ([]string, error) {
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel(root, path)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if _, ok := Extensions[filepath.Ext(name)]; !ok {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel(root, path)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}
