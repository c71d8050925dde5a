package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	g := &globalOptions{}
	return &cli.Command{
		Name:   "fcskit",
		Usage:  "Read FCS flow cytometry files and apply the Hyperlog transform",
		Flags:  g.flags(),
		Before: g.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			exportCmd(),
			hyperlogCmd(g),
			serveCmd(g),
			versionCmd(),
		},
	}
}
