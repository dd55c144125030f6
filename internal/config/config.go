// Package config defines process configuration and its loading layers.
//
// Conventions:
// - New(ctx) returns a Config holding every default.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Errors wrap this package's sentinels.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath points at the panel file (.csv or .xlsx).
	DataPath string `koanf:"data_path"`

	// DefaultCountryCount is how many countries the multi-country
	// selection starts with.
	DefaultCountryCount int `koanf:"default_country_count"`

	// MetricsNamespace prefixes every exported Prometheus series.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DataPath:            "education_analysis_dataset_clean.csv",
		DefaultCountryCount: 5,
		MetricsNamespace:    "edupanel",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.DefaultCountryCount < 1:
		return fmt.Errorf("%w: default_country_count must be at least 1, got %d", ErrInvalidConfig, c.DefaultCountryCount)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
