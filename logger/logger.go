/*
Package logger builds the process-wide structured logger.

PURPOSE:
  One place to configure zerolog for every binary. Development gets a
  human-readable console writer; anything else gets JSON lines suitable
  for log shipping.

SEE ALSO:
  - config/config.go: The env fields that feed this package
*/
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the output format and minimum level.
type Config struct {
	Env   string // "development" selects the console writer; anything else JSON
	Level string // trace, debug, info, warn, error
}

// New creates a structured logger and redirects zerolog's global logger to
// it so libraries logging through zerolog/log land in the same stream.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = zl
	return zl
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
