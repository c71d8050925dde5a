package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scu-obit/fcskit/internal/logger"
)

func exportCmd() *cli.Command {
	var out string

	return &cli.Command{
		Name:      "export",
		Usage:     "Write the decoded events of an FCS file as CSV",
		ArgsUsage: "<file.fcs>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output CSV path (default stdout)",
				Destination: &out,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd)
			if err != nil {
				return err
			}
			f, err := openFCS(ctx, path, true)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			w := outWriter(cmd)
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: create %s: %v", out, err), 1)
				}
				defer func() { _ = file.Close() }()
				w = file
			}
			bw := bufio.NewWriter(w)
			if err := f.WriteCSV(bw); err != nil {
				return cli.Exit(fmt.Sprintf("error: write csv: %v", err), 1)
			}
			if err := bw.Flush(); err != nil {
				return cli.Exit(fmt.Sprintf("error: write csv: %v", err), 1)
			}
			if out != "" {
				logger.FromContext(ctx).Info("exported events", "file", path, "out", out, "events", f.Events.Rows(), "parameters", f.NumParameters())
			}
			return nil
		},
	}
}
