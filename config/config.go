/*
Package config loads runtime configuration from environment variables.

PURPOSE:
  Central definition of every knob the server binary accepts, with
  defaults that make `go run ./cmd/server` work out of the box against a
  local SQLite file.
*/
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the absence engine.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DBPath is the SQLite database file. ":memory:" keeps everything
	// in-process, which is what the tests use.
	DBPath string `envconfig:"DB_PATH" default:"absence.db"`

	// CORSOrigins is a comma-separated list of allowed browser origins.
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Origins splits CORSOrigins into the slice the router middleware wants.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
