package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/vm"
)

// runCommand loads a file, running every top-level form in order, then
// invokes `main` if one is defined; main's Int result becomes the exit
// code.
var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "load and run a SQALE source file",
	ArgsUsage: "<file.sq>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("run requires a source file argument", 2)
		}

		v := vm.New(os.Stdout)

		if err := v.RunFile(path); err != nil {
			// A type-check failure carries the failing form's position;
			// Explain renders it as a source-line-with-caret view.
			msg := lexer.Explain(err)
			if !strings.HasSuffix(msg, "\n") {
				msg += "\n"
			}

			fmt.Fprint(os.Stderr, msg)

			return cli.Exit("", 1)
		}

		if code, ok := v.CallMain(); ok {
			os.Exit(code)
		}

		return nil
	},
}
