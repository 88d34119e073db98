// Package logging builds the process logger.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the logger's output.
type Options struct {
	// Env is the configured environment; "development" enables console output.
	Env string
	// Verbose lowers the level to debug and enables console output.
	Verbose bool
	// Quiet raises the level to warn. Verbose wins when both are set.
	Quiet bool
}

// New constructs a zerolog.Logger writing to w.
func New(w io.Writer, opts Options) zerolog.Logger {
	dev := opts.Env == "development"

	level := zerolog.InfoLevel
	switch {
	case opts.Verbose || dev:
		level = zerolog.DebugLevel
	case opts.Quiet:
		level = zerolog.WarnLevel
	}

	if opts.Verbose || dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}
