// Package logging builds the component loggers used across the framework.
// Every subsystem gets a zerolog.Logger tagged with its component name so
// interleaved event-loop output stays attributable.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	base *zerolog.Logger
)

// New returns a logger tagged with the given component name. The first
// call initializes the process-wide base logger from the SHOJI_LOG
// environment variable (trace, debug, info, warn, error; default info).
func New(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		l := zerolog.New(os.Stderr).
			Level(levelFromEnv()).
			With().
			Timestamp().
			Logger()
		base = &l
	}
	return base.With().Str("component", component).Logger()
}

// SetBase replaces the process-wide base logger. Component loggers created
// afterwards derive from it; useful for tests and embedders that already
// carry a configured zerolog instance.
func SetBase(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = &l
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("SHOJI_LOG")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "", "info":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
