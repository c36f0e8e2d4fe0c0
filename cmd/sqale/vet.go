package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sqale-lang/sqale/vet"
)

// vetAppCommand wires package vet into the CLI front end. Named
// vetAppCommand (not vetCommand) to avoid colliding with package vet's own
// exported names once both are in scope.
var vetAppCommand = &cli.Command{
	Name:      "vet",
	Usage:     "report static diagnostics for a SQALE source file",
	ArgsUsage: "<file.sq>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "min-severity",
			Value: "warning",
			Usage: "minimum severity to report: info, warning, error",
		},
	},
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("vet requires a source file argument", 2)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(err, 1)
		}

		config := vet.DefaultConfig()
		config.MinSeverity = vet.Severity(ctx.String("min-severity"))

		a := vet.NewAnalyzer(config)
		if err := a.AnalyzeSource(path, string(data)); err != nil {
			return cli.Exit(err, 1)
		}

		issues := a.Issues()
		for _, issue := range issues {
			fmt.Fprintln(ctx.App.Writer, issue.String())
		}

		if len(issues) > 0 {
			return cli.Exit("", 1)
		}

		return nil
	},
}
