package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/check"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/macro"
	"github.com/sqale-lang/sqale/parser"
	"github.com/sqale-lang/sqale/vm"
)

// irTypeName maps a SQALE type head to its LLVM counterpart, Unit to
// void and everything structural falling back to i8*.
var irTypeName = map[string]string{
	"Int":   "i64",
	"Float": "double",
	"Bool":  "i1",
	"Str":   "i8*",
	"Unit":  "void",
}

// emitIRCommand type-checks a program and reports, per top-level `def`,
// how its declared type maps across the LLVM-IR emission boundary
// (literals, arithmetic, comparisons, if, let, do, user function
// definitions with concrete types, calls, print). The actual lowering to
// LLVM textual IR lives in an external emitter; this command hands back
// the annotated-tree boundary information that emitter consumes.
var emitIRCommand = &cli.Command{
	Name:      "emit-ir",
	Usage:     "type-check a program and report its LLVM-IR emission boundary",
	ArgsUsage: "<file.sq>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("emit-ir requires a source file argument", 2)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(err, 1)
		}

		top, err := parser.New(path, string(data)).ParseTopLevel()
		if err != nil {
			return cli.Exit(fmt.Errorf("parse: %w", err), 1)
		}

		// A throwaway VM supplies the builtin type signatures the checker
		// resolves calls against; nothing is evaluated here.
		v := vm.New(io.Discard)

		if err := v.CollectDefmacros(top, v.Macros); err != nil {
			return cli.Exit(fmt.Errorf("expand: %w", err), 1)
		}

		expanded, err := macro.Expand(top, v.Macros)
		if err != nil {
			return cli.Exit(fmt.Errorf("expand: %w", err), 1)
		}

		if err := check.CheckProgram(expanded, v.Global); err != nil {
			return cli.Exit(fmt.Errorf("type error: %w", err), 1)
		}

		fmt.Fprintln(ctx.App.Writer, "sq_print_*, sq_alloc, sq_alloc_closure, sq_string_* declared")

		for _, form := range expanded.Children {
			describeTopLevelForIR(ctx, form, v.Global)
		}

		return nil
	},
}

func describeTopLevelForIR(ctx *cli.Context, form *ast.Node, globals *env.Env) {
	if !form.IsList() || form.Head() != "def" || len(form.Children) != 5 {
		return
	}

	name := form.Children[1].Sym

	ty, ok := globals.LookupType(name)
	if !ok {
		return
	}

	llvmType, known := irTypeName[ty.String()]
	if !known {
		llvmType = "i8*"
	}

	fmt.Fprintf(ctx.App.Writer, "def %s : %s -> %s\n", name, ty, llvmType)
}
