// Package middleware provides cross-cutting concerns for pipeline blocks:
// decorators for timeouts, throttling, tracing, metrics and logging, and a
// Prometheus-backed MetricsCollector.
package middleware

import (
	"errors"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// Chain composes mws into a single middleware. The first middleware is the
// outermost, so Chain(a, b)(id, blk) behaves like a(id, b(id, blk)).
func Chain(mws ...ports.BlockMiddleware) ports.BlockMiddleware {
	return func(id domain.BlockID, next ports.Block) ports.Block {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](id, next)
		}
		return next
	}
}

// blockStatus classifies a block outcome for metric labels and logs.
func blockStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ports.ErrTimeout):
		return "timeout"
	case errors.Is(err, ports.ErrRateLimited):
		return "rate_limited"
	}

	var blockErr *domain.BlockError
	if errors.As(err, &blockErr) {
		return blockErr.Kind.String()
	}
	return "error"
}
