// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"path/filepath"
	"strings"
)

// A Config is the part of a compile command that affects how a
// program is loaded.
type Config struct {
	// IncludeDirs are searched for #include "..." and <...> files,
	// after the including file's own directory for the quoted form.
	IncludeDirs []string

	// SystemDirs are searched after IncludeDirs. Files found in them,
	// and input files under them, are system files: queries skip them
	// and no edit is ever made to them.
	SystemDirs []string

	// Ignored lists flags that do not affect loading.
	Ignored []string
}

// ParseFlags parses compiler flags of the forms -Idir, -I dir,
// -isystem dir, and -isystem=dir. Other flags are recorded in Ignored.
func ParseFlags(flags []string) (Config, error) {
	var c Config
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		var dir *[]string
		var arg string
		switch {
		case f == "-I" || f == "-isystem":
			if i+1 >= len(flags) {
				return Config{}, fmt.Errorf("missing directory after %s", f)
			}
			arg = flags[i+1]
			i++
		case strings.HasPrefix(f, "-isystem"):
			arg = strings.TrimPrefix(strings.TrimPrefix(f, "-isystem"), "=")
		case strings.HasPrefix(f, "-I"):
			arg = strings.TrimPrefix(f, "-I")
		default:
			c.Ignored = append(c.Ignored, f)
			continue
		}
		if strings.HasPrefix(f, "-isystem") {
			dir = &c.SystemDirs
		} else {
			dir = &c.IncludeDirs
		}
		if arg == "" {
			return Config{}, fmt.Errorf("empty directory in %s", f)
		}
		*dir = append(*dir, filepath.Clean(arg))
	}
	return c, nil
}

// IsSystem reports whether the named file lies under a system directory.
func (c Config) IsSystem(name string) bool {
	name = filepath.Clean(name)
	for _, dir := range c.SystemDirs {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
