// Package vm wires every pipeline stage (lexer, parser, macro expander,
// type checker, tree-walking evaluator, GC, environment, module loader,
// builtins) into one runnable SQALE virtual machine.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/sqale-lang/sqale/arena"
	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/builtins"
	"github.com/sqale-lang/sqale/check"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/eval"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/macro"
	"github.com/sqale-lang/sqale/module"
	"github.com/sqale-lang/sqale/parser"
	"github.com/sqale-lang/sqale/value"
)

func init() {
	// Wires env.markRoot into package value's closure-capture marker.
	// Done once per process: both the runtime VM and every macro-time VM
	// share this hook, since it only type-asserts against *env.Env and
	// carries no VM-specific state.
	env.Init()
}

// VM is one running SQALE program: a global environment, its GC, its
// macro environment, and its module loader, all tied to one output
// stream. Spawned threads share all of this state with no lock beyond
// the GC's own; see DESIGN.md for the thread-safety contract.
type VM struct {
	// ID tags this VM instance in diagnostics.
	ID uuid.UUID

	Global *env.Env
	GC     *gc.Collector
	Macros *macro.Env

	loader *module.Loader

	// macroVM is the dedicated compile-time evaluator that runs every
	// collected defmacro body. Created lazily so a program with no
	// defmacro never pays for it. It is never exposed to running SQALE
	// code: user macros can only observe the AST handed to them, never
	// v's runtime environment.
	macroVM *VM
}

// New creates a fresh VM with every builtin registered (package
// builtins) and its module loader wired to re-enter this VM's own
// pipeline for `import`. out receives print output; nil selects
// os.Stdout.
func New(out io.Writer) *VM {
	if out == nil {
		out = os.Stdout
	}

	v := &VM{
		ID:     uuid.New(),
		Global: env.New(nil),
		GC:     gc.New(),
		Macros: macro.NewEnv(),
	}

	v.Global.Aux = v

	// The collector gets a single root-marking callback responsible for
	// marking all reachable Obj headers. Every value reachable from the
	// global environment is reachable from v.Global's frame chain;
	// closures captured in globals carry their own environments, walked
	// transitively by value.MarkValue/markEnvironment.
	v.GC.SetRootMarker(func(mark func(*gc.Obj)) {
		env.MarkRoots(v.Global, mark)
	})

	builtins.Register(v.Global, v.GC, out)

	v.loader = module.NewLoader(v.Global, v.runPipeline)

	return v
}

// newMacroVM builds the isolated compile-time evaluator: its own
// globals, GC, and builtins, reachable only through CollectDefmacros and
// never shared with a runtime VM's state.
func newMacroVM() *VM {
	mv := &VM{
		ID:     uuid.New(),
		Global: env.New(nil),
		GC:     gc.New(),
		Macros: macro.NewEnv(),
	}

	mv.Global.Aux = mv
	mv.GC.SetRootMarker(func(mark func(*gc.Obj)) {
		env.MarkRoots(mv.Global, mark)
	})

	builtins.Register(mv.Global, mv.GC, io.Discard)

	// A macro-time VM can still import helper modules (e.g. a package of
	// shared macro-writing utilities) but those imports must never thread
	// back into the runtime VM's loader.
	mv.loader = module.NewLoader(mv.Global, mv.runPipeline)

	return mv
}

// runPipeline is package module's Pipeline callback: collect defmacros,
// expand, type-check, and evaluate one freshly parsed module's top-level
// forms, reused both for the top-level program (via RunSource) and for
// every `import` the loader resolves.
func (v *VM) runPipeline(top *ast.Node, globalEnv *env.Env, _ *arena.Arena) error {
	if err := v.CollectDefmacros(top, v.Macros); err != nil {
		return err
	}

	expanded, err := macro.Expand(top, v.Macros)
	if err != nil {
		return err
	}

	if err := check.CheckProgram(expanded, globalEnv); err != nil {
		return err
	}

	eval.RunProgram(expanded, globalEnv, v.GC)

	return nil
}

// RunSource parses, expands, type-checks, and evaluates src (named path
// for diagnostics). A type-check failure stops the whole program and is
// returned so the caller (cmd/sqale) can exit non-zero.
func (v *VM) RunSource(path, src string) error {
	top, err := parser.New(path, src).ParseTopLevel()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return v.runPipeline(top, v.Global, nil)
}

// RunFile reads path and runs it through RunSource.
func (v *VM) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return v.RunSource(path, string(data))
}

// CallMain invokes the zero-argument closure bound to `main`, if one
// exists; its Int result is the process exit code. ok is false if no
// `main` is bound.
func (v *VM) CallMain() (exitCode int, ok bool) {
	b, bound := v.Global.Lookup("main")
	if !bound || b.V.Kind != value.Closure {
		return 0, false
	}

	result := eval.Apply(b.V, nil, v.Global, v.GC)
	if result.Kind != value.Int {
		return 0, true
	}

	return int(result.I), true
}

// Import satisfies eval.Host: resolving, loading, and running an
// imported module through this VM's own loader.
func (v *VM) Import(spec string) error {
	return v.loader.Import(spec)
}

// Collect forces one GC cycle, for diagnostics.
func (v *VM) Collect() { v.GC.Collect() }
