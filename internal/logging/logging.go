// Package logging builds the slog loggers used by rp1.
package logging

import (
	"io"
	"log/slog"

	"github.com/rp1-run/rp1/internal/config"
)

// New creates a logger writing to w at the given level and format.
func New(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	return slog.New(newHandler(format, w, parseLevel(level)))
}

// NewForTest creates a silent logger for tests.
func NewForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// parseLevel converts config log level to slog.Level. Unset means warn so a
// plain build only prints per-artifact problems.
func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newHandler creates a slog.Handler based on format.
func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// WithArtifact returns a logger with artifact context.
func WithArtifact(logger *slog.Logger, locator string, kind string) *slog.Logger {
	return logger.With("artifact", locator, "kind", kind)
}

// WithStage returns a logger with stage context.
func WithStage(logger *slog.Logger, stage string) *slog.Logger {
	return logger.With("stage", stage)
}
