// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactor

import "rsc.io/xpnd/program"

// Slot names bound by the queries below.
const (
	SlotCallsite  = "callsite"
	SlotCallee    = "callee"
	SlotCaller    = "caller"
	SlotDecl      = "fdecl"
	SlotGlobalRef = "globalReference"
	SlotGlobalVar = "gvarName"
)

// FreeCallPattern matches calls outside system files that reach a
// function named name directly, not through an object.
// The enclosing function, if any, is bound to SlotCaller.
func FreeCallPattern(name string) program.Matcher {
	return program.CallExpr(
		program.Unless(program.IsExpansionInSystemFile()),
		program.DirectCallee(program.FunctionDecl(program.HasName(name)).Bind(SlotCallee)),
		program.Optionally(program.Caller(program.FunctionDecl().Bind(SlotCaller))),
	).Bind(SlotCallsite)
}

// BoundCallPattern matches calls outside system files to a method named
// name through an object, pointer, reference, or implicit this.
func BoundCallPattern(name string) program.Matcher {
	return program.MemberCallExpr(
		program.Unless(program.IsExpansionInSystemFile()),
		program.Callee(program.MethodDecl(program.HasName(name)).Bind(SlotCallee)),
		program.Optionally(program.Caller(program.FunctionDecl().Bind(SlotCaller))),
	).Bind(SlotCallsite)
}

// AnyCallPattern matches every resolved call outside system files.
func AnyCallPattern() program.Matcher {
	return program.CallExpr(
		program.Unless(program.IsExpansionInSystemFile()),
		program.Callee(program.FunctionDecl().Bind(SlotCallee)),
		program.Optionally(program.Caller(program.FunctionDecl().Bind(SlotCaller))),
	).Bind(SlotCallsite)
}

// FuncDeclPattern matches declarations of free functions named name
// outside system files.
func FuncDeclPattern(name string) program.Matcher {
	return program.FreeFunctionDecl(
		program.Unless(program.IsExpansionInSystemFile()),
		program.HasName(name),
	).Bind(SlotDecl)
}

// MethodDeclPattern matches declarations of methods named name
// outside system files.
func MethodDeclPattern(name string) program.Matcher {
	return program.MethodDecl(
		program.Unless(program.IsExpansionInSystemFile()),
		program.HasName(name),
	).Bind(SlotDecl)
}

// GlobalRefPattern matches references, inside a function, to a variable
// named name declared at namespace scope. References to a static local
// of the same name do not match.
func GlobalRefPattern(name string) program.Matcher {
	return program.DeclRefExpr(
		program.Unless(program.IsExpansionInSystemFile()),
		program.To(program.VarDecl(program.HasGlobalStorage(), program.HasNamespaceScope(), program.HasName(name)).Bind(SlotGlobalVar)),
		program.HasAncestor(program.FunctionDecl().Bind(SlotCaller)),
	).Bind(SlotGlobalRef)
}
