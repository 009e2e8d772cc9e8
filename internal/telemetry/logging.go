// Package telemetry provides structured logging setup shared by the engine
// and the command-line front-ends.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel parses a level name. Recognized values are DEBUG, INFO, WARN and
// ERROR (case-insensitive); anything else yields INFO.
func LogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures NewLogger.
type Options struct {
	// Level is a level name accepted by LogLevel.
	Level string
	// Format is "json" or "text". Anything else selects text.
	Format string
}

// OptionsFromEnv reads LOG_LEVEL and LOG_FORMAT.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := LogLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// SetupLogger builds a stderr logger from the environment and installs it as
// the slog default. Stdout is left to command output.
func SetupLogger() *slog.Logger {
	logger := NewLogger(os.Stderr, OptionsFromEnv())
	slog.SetDefault(logger)
	return logger
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey string

const ctxLogger ctxKey = "logger"

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger, logger)
}

// FromContext returns the logger stored in ctx, or the slog default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID returns a logger annotated with run_id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithBlockID returns a logger annotated with block_id.
func WithBlockID(logger *slog.Logger, blockID string) *slog.Logger {
	return logger.With("block_id", blockID)
}
