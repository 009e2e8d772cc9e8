package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// timeoutBlock bounds the duration of every Run call.
type timeoutBlock struct {
	next    ports.Block
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that cancels a block's context after
// timeout. A block that stops because its own deadline passed fails with a
// Processing error wrapping ports.ErrTimeout. A non-positive timeout leaves
// blocks unwrapped.
func TimeoutMiddleware(timeout time.Duration) ports.BlockMiddleware {
	return func(_ domain.BlockID, next ports.Block) ports.Block {
		if timeout <= 0 {
			return next
		}
		return &timeoutBlock{next: next, timeout: timeout}
	}
}

// Spec returns the wrapped block's descriptor.
func (t *timeoutBlock) Spec() domain.BlockSpec { return t.next.Spec() }

// Run executes the wrapped block under a deadline.
func (t *timeoutBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	outputs, err := t.next.Run(runCtx, inputs)
	if err == nil {
		return outputs, nil
	}

	// Only our own deadline is reported as a timeout; a cancelled parent
	// passes through untouched.
	if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, domain.WrapProcessingError(
			fmt.Sprintf("timed out after %s", t.timeout),
			fmt.Errorf("%w: %w", ports.ErrTimeout, err),
		)
	}
	return nil, err
}
