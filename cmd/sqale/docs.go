package main

import (
	"fmt"
	"os"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v2"
)

// docsCommand renders this binary's own command tree to a roff man page,
// the urfave/cli-to-md2man pipeline the cli/v2 docs recommend.
var docsCommand = &cli.Command{
	Name:  "docs",
	Usage: "generate a man page for this command to stdout",
	Action: func(ctx *cli.Context) error {
		markdown, err := ctx.App.ToMarkdown()
		if err != nil {
			return cli.Exit(fmt.Errorf("rendering markdown: %w", err), 1)
		}

		roff := md2man.Render([]byte(markdown))

		_, err = os.Stdout.Write(roff)
		return err
	},
}
