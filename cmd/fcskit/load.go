package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/scu-obit/fcskit/internal/logger"
	"github.com/scu-obit/fcskit/internal/source"
	"github.com/scu-obit/fcskit/pkg/fcs"
)

// fileArg returns the single positional file argument.
func fileArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", cli.Exit(fmt.Sprintf("error: %s expects exactly one FCS file", cmd.Name), 1)
	}
	return cmd.Args().First(), nil
}

// openFCS loads and parses path. The mapping is released before returning;
// parsed events never alias it.
func openFCS(ctx context.Context, path string, readData bool) (*fcs.File, error) {
	log := logger.FromContext(ctx).With("file", path)

	buf, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer func() { _ = buf.Close() }()

	start := time.Now()
	f, err := fcs.Parse(buf.Bytes(), readData, fcs.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Debug("parsed fcs file",
		"version", f.Header.Version,
		"bytes", buf.Len(),
		"mapped", buf.Mapped(),
		"compression", buf.Compression().String(),
		"parameters", f.NumParameters(),
		"events", f.NumEvents(),
		"elapsed", time.Since(start),
	)
	return f, nil
}
