package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// rateLimitedBlock paces Run calls with a token bucket.
type rateLimitedBlock struct {
	next    ports.Block
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces a token bucket across
// every block it wraps. The limit parameter sets runs per second, while burst
// allows temporary spikes above the sustained rate. It is meant for blocks
// that call external services with their own quotas.
func RateLimitMiddleware(limit rate.Limit, burst int) ports.BlockMiddleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(_ domain.BlockID, next ports.Block) ports.Block {
		return &rateLimitedBlock{next: next, limiter: limiter}
	}
}

// Spec returns the wrapped block's descriptor.
func (r *rateLimitedBlock) Spec() domain.BlockSpec { return r.next.Spec() }

// Run waits for a token before forwarding the call. A wait that cannot
// complete fails with a Processing error wrapping ports.ErrRateLimited.
func (r *rateLimitedBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapProcessingError(
			"rate limit",
			fmt.Errorf("%w: %w", ports.ErrRateLimited, err),
		)
	}
	return r.next.Run(ctx, inputs)
}
