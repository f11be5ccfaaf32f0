// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Xpnd threads a new parameter through C++ (or Go) functions and their
// callers, and replaces references to global variables.
//
// Usage:
//
//	xpnd [flags] command [command flags] [path ...]
//
// Each path is a source file or a directory. Directories are searched
// for C++ sources and headers, skipping hidden, vendored, and build
// directories and anything the directory's .gitignore excludes.
// Files reached through #include are loaded too.
// With --lang=go, the paths are package patterns instead.
//
// By default xpnd only lists the edits it collected. The --diff flag
// prints them as a unified diff, and -w writes them back to the files.
// The -d flag makes a dry run: the edits are found, checked for
// conflicts, and listed, but never kept.
//
// The -I and --isystem flags add include directories, as for a compiler.
// Files found through --isystem directories, or lying under one, are
// system files: xpnd reads them but never edits them.
// The -D and --std flags are accepted and ignored.
//
// # Expanding functions
//
//	xpnd expand -t f,g --np "Config const & cfg" --na cfg src
//
// adds the parameter text given by --np to every declaration and
// definition of the functions and methods named f and g, and the
// argument text given by --na to every call of them. Targets may also
// be written Class::method.
//
// The new parameter goes after the last parameter without a default
// value, and before a "..." or parameter pack, so that existing calls
// keep meaning what they meant. The new argument goes in the matching
// position. A function declared with an explicit (void) parameter list
// cannot be expanded and is reported as a warning, as is any call
// whose argument list cannot line up with the new parameter.
//
// # Replacing global variables
//
//	xpnd replace --gvar NR,NB --lvar cfg.NR,cfg.NB src
//
// replaces each reference, inside a function, to the global variable
// NR with cfg.NR and to NB with cfg.NB. References to locals,
// parameters, and fields that happen to share a global's name are left
// alone.
//
// # Listing calls
//
//	xpnd calls [-t f,g] src
//
// lists each call to f or g, or to any known function if -t is omitted,
// with the function it is called from.
//
// # Output
//
// Each command prints whether it is a dry run, the number of targets
// and queries, every edit as
//
//	file: offset:+length:"text"
//
// and a summary of matches, edits, conflicts, and failures.
// Two edits to the same text conflict: the first is kept and the second
// is reported. Warnings are printed to standard error.
package main
