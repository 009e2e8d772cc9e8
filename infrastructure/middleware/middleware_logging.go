package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
	"github.com/softwarewrighter/hybrid-vid/internal/telemetry"
)

// loggedBlock logs the start and outcome of every Run call.
type loggedBlock struct {
	id     domain.BlockID
	next   ports.Block
	logger *slog.Logger
}

// LoggingMiddleware creates middleware that logs block runs at Debug level
// with the block id attached. When logger is nil the logger carried in the
// run's context is used instead.
func LoggingMiddleware(logger *slog.Logger) ports.BlockMiddleware {
	return func(id domain.BlockID, next ports.Block) ports.Block {
		return &loggedBlock{id: id, next: next, logger: logger}
	}
}

// Spec returns the wrapped block's descriptor.
func (l *loggedBlock) Spec() domain.BlockSpec { return l.next.Spec() }

// Run executes the wrapped block and logs its outcome.
func (l *loggedBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	logger := l.logger
	if logger == nil {
		logger = telemetry.FromContext(ctx)
	}
	logger = telemetry.WithBlockID(logger, string(l.id))

	start := time.Now()
	logger.DebugContext(ctx, "block run started", "inputs", len(inputs))

	outputs, err := l.next.Run(ctx, inputs)
	if err != nil {
		logger.DebugContext(ctx, "block run failed",
			"status", blockStatus(err),
			"error", err,
			"duration", time.Since(start),
		)
		return nil, err
	}

	logger.DebugContext(ctx, "block run finished",
		"outputs", len(outputs),
		"duration", time.Since(start),
	)
	return outputs, nil
}
