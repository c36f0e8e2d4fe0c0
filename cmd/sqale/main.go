// Command sqale is the SQALE language's front end: run programs, start a
// REPL, lint with vet, watch a file for changes, and generate this
// binary's own man page.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:        "sqale",
		Usage:       "run, check, and explore SQALE programs",
		Description: "sqale is the reference front end for the SQALE expression language.",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
			emitIRCommand,
			vetAppCommand,
			watchCommand,
			docsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sqale: %v\n", err)
		os.Exit(1)
	}
}
