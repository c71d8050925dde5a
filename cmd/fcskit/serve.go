package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/scu-obit/fcskit/internal/api"
	"github.com/scu-obit/fcskit/internal/logger"
	"github.com/scu-obit/fcskit/internal/metrics"
	"github.com/scu-obit/fcskit/internal/webui"
	"github.com/scu-obit/fcskit/pkg/hyperlog"
)

func serveCmd(g *globalOptions) *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxUpload   int64
		uploadRate  float64
		maxFiles    int
		decades     float64
		bins        int
		sampleSize  int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the FCS inspection REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "maximum upload size in bytes, after decompression",
				Value:       api.DefaultMaxUpload,
				Destination: &maxUpload,
			},
			&cli.Float64Flag{
				Name:        "rate",
				Usage:       "uploads per second (0 = unlimited)",
				Destination: &uploadRate,
			},
			&cli.IntFlag{
				Name:        "max-files",
				Usage:       "parsed files kept in memory",
				Value:       api.DefaultCapacity,
				Destination: &maxFiles,
			},
			&cli.Float64Flag{
				Name:        "decades",
				Usage:       "default Hyperlog M for transform requests",
				Value:       hyperlog.DefaultDecades,
				Destination: &decades,
			},
			&cli.IntFlag{
				Name:        "bins",
				Usage:       "default Hyperlog bin alignment (0 = off)",
				Destination: &bins,
			},
			&cli.IntFlag{
				Name:        "sample-size",
				Usage:       "default number of values per column response (0 = all)",
				Destination: &sampleSize,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, g.cfg, &addr, &maxUpload, &uploadRate)
			applyTransformConfig(cmd, g.cfg, "decades", &decades, &bins, "sample-size", &sampleSize)
			log := logger.FromContext(ctx)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.NewMetrics(reg)
			if err != nil {
				return cli.Exit("error: register metrics: "+err.Error(), 1)
			}

			server := api.NewServer(api.Config{
				Store:      api.NewFileStore(maxFiles),
				Metrics:    m,
				Gatherer:   reg,
				Logger:     log,
				MaxUpload:  maxUpload,
				UploadRate: uploadRate,
				Decades:    decades,
				Bins:       bins,
				SampleSize: sampleSize,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			webui.Register(e)
			log.Info("starting server", "address", addr, "max_upload", maxUpload, "upload_rate", uploadRate)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
