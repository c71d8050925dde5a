package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scu-obit/fcskit/internal/logger"
)

// globalOptions holds the root flags shared by every subcommand.
type globalOptions struct {
	logLevel   string
	logFormat  string
	debug      bool
	configFile string

	cfg Config
}

func (g *globalOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default ~/.config/fcskit/config.yaml)",
			Destination: &g.configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &g.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &g.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &g.debug,
		},
	}
}

// before loads the config file and installs the logger into the context.
func (g *globalOptions) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return ctx, cli.Exit("error: "+err.Error(), 1)
	}
	g.cfg = cfg
	applyLoggingConfig(cmd, cfg, &g.logLevel, &g.logFormat)

	level := logger.ParseLevel(g.logLevel)
	if g.debug {
		level = slog.LevelDebug
	}
	log, err := logger.NewFromFormat(errWriter(cmd), g.logFormat, level)
	if err != nil {
		return ctx, cli.Exit("error: "+err.Error(), 1)
	}
	return logger.WithContext(ctx, log), nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
