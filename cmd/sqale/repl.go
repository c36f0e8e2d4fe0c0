package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sqale-lang/sqale/check"
	"github.com/sqale-lang/sqale/eval"
	"github.com/sqale-lang/sqale/macro"
	"github.com/sqale-lang/sqale/parser"
	"github.com/sqale-lang/sqale/value"
	"github.com/sqale-lang/sqale/vm"
)

// replCommand is the interactive read/expand/check/evaluate/print loop.
// Each line is parsed, macro-expanded, type-checked, and evaluated
// against one persistent VM, so `def`s from earlier lines stay visible;
// non-Unit results print.
var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "start an interactive read-eval-print loop",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "types",
			Aliases: []string{"v"},
			Usage:   "print each result's static type alongside its value",
		},
	},
	Action: func(ctx *cli.Context) error {
		runREPL(ctx.App.Writer, os.Stdin, ctx.Bool("types"))
		return nil
	},
}

func runREPL(out io.Writer, in io.Reader, showTypes bool) {
	v := vm.New(out)
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "sqale repl (Ctrl-D to exit)")

	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := evalREPLLine(v, out, line, showTypes); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func evalREPLLine(v *vm.VM, out io.Writer, line string, showTypes bool) error {
	top, err := parser.New("<repl>", line).ParseTopLevel()
	if err != nil {
		return err
	}

	if err := v.CollectDefmacros(top, v.Macros); err != nil {
		return err
	}

	expanded, err := macro.Expand(top, v.Macros)
	if err != nil {
		return err
	}

	for _, form := range expanded.Children {
		ty, err := check.Check(form, v.Global)
		if err != nil {
			return err
		}

		result := eval.Eval(form, v.Global, v.GC)
		if result.Kind == value.Unit {
			continue
		}

		if showTypes {
			fmt.Fprintf(out, "%s : %s\n", result, ty)
		} else {
			fmt.Fprintf(out, "%s\n", result)
		}
	}

	return nil
}
