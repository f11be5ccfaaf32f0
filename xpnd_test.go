// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// TestRun runs the command line in each testdata script's comment
// over the script's files and compares the output with its stdout
// and stderr files. The temporary directory is removed from the
// output before comparing.
func TestRun(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no test cases")

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Log(file)
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module m\n"), 0666))
			var wantStdout, wantStderr txtar.File
			for _, file := range ar.Files {
				switch file.Name {
				case "stdout":
					wantStdout = file
					continue
				case "stderr":
					wantStderr = file
					continue
				}
				targ := filepath.Join(dir, file.Name)
				require.NoError(t, os.MkdirAll(filepath.Dir(targ), 0777))
				require.NoError(t, os.WriteFile(targ, file.Data, 0666))
			}

			args, err := splitArgs(string(ar.Comment))
			require.NoError(t, err)

			var stdout, stderr bytes.Buffer
			r := &runner{Stdout: &stdout, Stderr: &stderr, Dir: dir}
			if err := run(r, args); err != nil {
				fmt.Fprintf(r.Stderr, "ERROR: %v\n", err)
			}

			cmp := func(name string, have, want []byte) {
				have = bytes.ReplaceAll(have, []byte(dir+string(filepath.Separator)), nil)
				assert.Equal(t, clean(want), clean(have), name)
			}
			cmp("stderr", stderr.Bytes(), wantStderr.Data)
			cmp("stdout", stdout.Bytes(), wantStdout.Data)
		})
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "input.cc")
	require.NoError(t, os.WriteFile(name, []byte("int NR;\nint f() { return NR; }\n"), 0666))

	var stdout, stderr bytes.Buffer
	r := &runner{Stdout: &stdout, Stderr: &stderr, Dir: dir}
	require.NoError(t, run(r, []string{"-w", "replace", "--gvar", "NR", "--lvar", "cfg.NR", "input.cc"}))
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "int NR;\nint f() { return cfg.NR; }\n", string(data))
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"frob"},
		{"--lang", "rust", "calls"},
		{"-d", "-w", "calls"},
		{"--bogus", "calls"},
		{"replace", "--lvar", "x"},
		{"expand", "--np", "int np", "--na", "np"},
	} {
		r := &runner{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer), Dir: t.TempDir()}
		err := run(r, args)
		var u *errUsage
		assert.ErrorAs(t, err, &u, "%q", args)
	}
}

func TestMismatchedVars(t *testing.T) {
	r := &runner{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer), Dir: t.TempDir()}
	err := run(r, []string{"replace", "--gvar", "NR,NB", "--lvar", "cfg.NR"})
	var pe *errPrecondition
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "2 global variables but 1 replacements")
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`-d expand -t f,g --np "int const & np" --na 'np' .` + "\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"-d", "expand", "-t", "f,g", "--np", "int const & np", "--na", "np", "."}, args)

	_, err = splitArgs(`expand --np "int`)
	assert.Error(t, err)
}

// splitArgs splits a command line into words at unquoted spaces.
// Single and double quotes group words and are removed.
func splitArgs(line string) ([]string, error) {
	var args []string
	var word strings.Builder
	inWord := false
	var q byte
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case q != 0 && c == q:
			q = 0
		case q != 0:
			word.WriteByte(c)
		case c == '\'' || c == '"':
			q = c
			inWord = true
		case c == ' ' || c == '\t' || c == '\n':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteByte(c)
			inWord = true
		}
	}
	if q != 0 {
		return nil, fmt.Errorf("unterminated %c quote", q)
	}
	if inWord {
		args = append(args, word.String())
	}
	return args, nil
}

func clean(data []byte) string {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
