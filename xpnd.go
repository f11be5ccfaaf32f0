// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"rsc.io/xpnd/discover"
	"rsc.io/xpnd/edit"
	"rsc.io/xpnd/program"
	"rsc.io/xpnd/program/cxx"
	"rsc.io/xpnd/program/golang"
	"rsc.io/xpnd/refactor"
)

const usageText = `usage: xpnd [flags] command [command flags] [path ...]

commands:
	expand -t f,g --np "int np" --na np   add a parameter to f and g and an argument to their calls
	replace --gvar NR,NB --lvar c.NR,c.NB  replace references to global variables
	calls [-t f,g]                         list call sites

flags:
`

func main() {
	log.SetPrefix("xpnd: ")
	log.SetFlags(0)

	r := &runner{Stdout: os.Stdout, Stderr: os.Stderr, Dir: "."}
	if err := run(r, os.Args[1:]); err != nil {
		var u *errUsage
		if errors.As(err, &u) {
			fmt.Fprintf(os.Stderr, "xpnd: %v\n\n%s%s", err, usageText, globalFlags(new(runner)).FlagUsages())
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// A runner holds the state of one invocation.
type runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string // directory relative paths are resolved against

	dryRun   bool
	verbose  bool
	showDiff bool
	write    bool
	lang     string
	includes []string
	systems  []string
	defines  []string
	std      string
}

var cmds = map[string]func(*runner, []string) error{
	"calls":   cmdCalls,
	"expand":  cmdExpand,
	"replace": cmdReplace,
}

func globalFlags(r *runner) *pflag.FlagSet {
	fs := newFlagSet("xpnd")
	fs.SetInterspersed(false)
	fs.BoolVarP(&r.dryRun, "dry-run", "d", false, "find and report edits without keeping them")
	fs.BoolVarP(&r.verbose, "verbose", "v", false, "trace every match")
	fs.BoolVar(&r.showDiff, "diff", false, "print a diff of the changes")
	fs.BoolVarP(&r.write, "write", "w", false, "write the changes back to the files")
	fs.StringVar(&r.lang, "lang", "cxx", "source language, cxx or go")
	fs.StringArrayVarP(&r.includes, "include", "I", nil, "add `dir` to the include search path")
	fs.StringArrayVar(&r.systems, "isystem", nil, "add `dir` to the system include search path")
	fs.StringArrayVarP(&r.defines, "define", "D", nil, "define a macro (recorded, not expanded)")
	fs.StringVar(&r.std, "std", "", "language standard (recorded, not used)")
	return fs
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if fs.Name() == "xpnd" {
			return nil, newErrUsage("%v", err)
		}
		return nil, newErrUsage("%s: %v", fs.Name(), err)
	}
	return fs.Args(), nil
}

func run(r *runner, args []string) error {
	args, err := parseFlags(globalFlags(r), args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return newErrUsage("missing command")
	}
	fn := cmds[args[0]]
	if fn == nil {
		return newErrUsage("unknown command %s", args[0])
	}
	if r.lang != "cxx" && r.lang != "go" {
		return newErrUsage("unknown language %s", r.lang)
	}
	if r.dryRun && (r.write || r.showDiff) {
		return newErrUsage("-d cannot be combined with -w or --diff")
	}
	return fn(r, args[1:])
}

// path resolves name against r.Dir.
func (r *runner) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// compileFlags returns the flags for cxx.Build.
func (r *runner) compileFlags() []string {
	var flags []string
	for _, dir := range r.includes {
		flags = append(flags, "-I", r.path(dir))
	}
	for _, dir := range r.systems {
		flags = append(flags, "-isystem", r.path(dir))
	}
	for _, def := range r.defines {
		flags = append(flags, "-D"+def)
	}
	if r.std != "" {
		flags = append(flags, "-std="+r.std)
	}
	return flags
}

// load builds the program for paths, "." if none are given.
// For C++, directories are searched for sources with discover.Files.
// For Go, paths are package patterns.
func (r *runner) load(paths []string) (program.Program, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if r.lang == "go" {
		p, err := golang.Load(r.Dir, paths...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	var srcs []program.Source
	for _, path := range paths {
		path = r.path(path)
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		names := []string{path}
		if info.IsDir() {
			if names, err = discover.Files(path); err != nil {
				return nil, err
			}
		}
		for _, name := range names {
			text, err := os.ReadFile(name)
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, program.Source{Name: name, Text: text})
		}
	}
	if len(srcs) == 0 {
		return nil, newErrPrecondition("no C++ files in %s", strings.Join(paths, " "))
	}
	p, err := cxx.Build(context.Background(), srcs, r.compileFlags())
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *runner) options() []refactor.Option {
	if !r.verbose {
		return nil
	}
	return []refactor.Option{refactor.WithOutput(r.Stdout)}
}

func (r *runner) announce(targets, matchers int) {
	if r.dryRun {
		fmt.Fprintf(r.Stdout, "This is a dry run\n")
	} else {
		fmt.Fprintf(r.Stdout, "This is not a dry run\n")
	}
	fmt.Fprintf(r.Stdout, "%d targets, along with %d matchers\n", targets, matchers)
}

// finish prints the accepted edits, the counts, and the diagnostics
// of gens, then shows or writes the changes in sets.
// A dry run lists the same edits a real run would keep.
func (r *runner) finish(p program.Program, accepted, sets edit.Sets, gens ...*refactor.Generator) error {
	fmt.Fprintf(r.Stdout, "Replacements collected:\n")
	for _, e := range accepted.Sorted() {
		fmt.Fprintf(r.Stdout, "%s\n", e)
	}

	var total refactor.Stats
	for _, g := range gens {
		s := g.Stats()
		total.Matches += s.Matches
		total.Edits += s.Edits
		total.Conflicts += s.Conflicts
		total.Failures += s.Failures
	}
	fmt.Fprintf(r.Stdout, "%v\n", total)
	for _, g := range gens {
		if err := g.Err(); err != nil {
			fmt.Fprintf(r.Stderr, "%v\n", err)
		}
	}

	if r.showDiff {
		d, err := refactor.Diff(p, sets, r.Dir)
		if err != nil {
			return err
		}
		r.Stdout.Write(d)
	}
	if r.write {
		return refactor.Write(p, sets, r.Stderr)
	}
	return nil
}

func cmdExpand(r *runner, args []string) error {
	fs := newFlagSet("expand")
	targets := fs.StringSliceP("targets", "t", nil, "functions to expand, comma separated")
	np := fs.String("np", "", "parameter to add to each target's signature")
	na := fs.String("na", "", "argument to add to each call of a target")
	paths, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(*targets) == 0 {
		return newErrUsage("expand: no target functions")
	}
	if *np == "" || *na == "" {
		return newErrUsage("expand: need both --np and --na")
	}
	p, err := r.load(paths)
	if err != nil {
		return err
	}

	spec := refactor.TargetSpec{
		Names:   refactor.Targets(*targets...),
		NewText: *np,
		DryRun:  r.dryRun,
		Verbose: r.verbose,
	}
	sig, calls := refactor.NewExpander(spec, *na, r.options()...)
	r.announce(len(sig.Names()), len(sig.Matchers())+len(calls.Matchers()))
	fmt.Fprintf(r.Stdout, "Expanding functions\n")
	refactor.Run(p, sig, calls)
	return r.finish(p, sig.Accepted(), sig.Replacements(), sig, calls)
}

func cmdReplace(r *runner, args []string) error {
	fs := newFlagSet("replace")
	olds := fs.StringSlice("gvar", nil, "global variables to replace, comma separated")
	news := fs.StringSlice("lvar", nil, "replacement for each global variable, comma separated")
	paths, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(*olds) == 0 {
		return newErrUsage("replace: no global variables")
	}
	pairs, err := refactor.NewVarPairs(*olds, *news)
	if err != nil {
		return newErrPrecondition("need one replacement for each global variable: %v", err)
	}
	p, err := r.load(paths)
	if err != nil {
		return err
	}

	opts := r.options()
	g := refactor.NewVarReplacer(pairs, r.dryRun, opts...)
	r.announce(len(g.Names()), len(g.Matchers()))
	g.Run(p)
	return r.finish(p, g.Accepted(), g.Replacements(), g)
}

func cmdCalls(r *runner, args []string) error {
	fs := newFlagSet("calls")
	targets := fs.StringSliceP("targets", "t", nil, "list only calls to these functions, comma separated")
	paths, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	p, err := r.load(paths)
	if err != nil {
		return err
	}

	var ms []program.Matcher
	if len(*targets) == 0 {
		ms = append(ms, refactor.AnyCallPattern())
	} else {
		names := append([]string(nil), *targets...)
		sort.Strings(names)
		for _, name := range names {
			ms = append(ms, refactor.FreeCallPattern(name), refactor.BoundCallPattern(name))
		}
	}

	rep := refactor.NewReporter(r.Stdout, p, r.verbose)
	n := 0
	for _, m := range program.Find(p, ms...) {
		c := m.Binding.Call(refactor.SlotCallsite)
		callee := m.Binding.Func(refactor.SlotCallee)
		caller := m.Binding.Func(refactor.SlotCaller)
		if c == nil || callee == nil || caller == nil {
			continue
		}
		pos := program.Position(p, c.Span.File, c.Span.Start)
		fmt.Fprintf(r.Stdout, "%v: %s called from %s\n", pos, callee.QualifiedName(), caller.QualifiedName())
		rep.Node("\tcallee", callee)
		rep.Node("\tcaller", caller)
		n++
	}
	fmt.Fprintf(r.Stdout, "Reported %d calls\n", n)
	return nil
}
