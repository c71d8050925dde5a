package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the fcskit configuration file (~/.config/fcskit/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress  string   `yaml:"server_address"`
	MaxUploadBytes *int64   `yaml:"max_upload_bytes"`
	UploadRate     *float64 `yaml:"upload_rate"`

	// Transform defaults
	HyperlogDecades *float64 `yaml:"hyperlog_decades"`
	HyperlogBins    *int     `yaml:"hyperlog_bins"`
	SampleSize      *int     `yaml:"sample_size"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fcskit", "config.yaml")
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64, uploadRate *float64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload") {
		*maxUpload = *cfg.MaxUploadBytes
	}
	if cfg.UploadRate != nil && !c.IsSet("rate") {
		*uploadRate = *cfg.UploadRate
	}
}

// applyTransformConfig applies config file defaults shared by the hyperlog
// and serve commands. The two commands name the decades and sample size
// flags differently.
func applyTransformConfig(c *cli.Command, cfg Config, decadesFlag string, decades *float64, bins *int, sampleFlag string, sampleSize *int) {
	if cfg.HyperlogDecades != nil && !c.IsSet(decadesFlag) {
		*decades = *cfg.HyperlogDecades
	}
	if cfg.HyperlogBins != nil && !c.IsSet("bins") {
		*bins = *cfg.HyperlogBins
	}
	if cfg.SampleSize != nil && !c.IsSet(sampleFlag) {
		*sampleSize = *cfg.SampleSize
	}
}
