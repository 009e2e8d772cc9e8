// Package publishing adapts the video rendering and packaging toolchain to
// ports.VideoPublisher.
package publishing

import (
	"context"

	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

const serviceName = "video-publishing"

var _ ports.VideoPublisher = (*Publisher)(nil)

// Publisher renders project directories into release packages. Rendering is
// not implemented yet and every call fails with ports.ErrNotImplemented.
type Publisher struct{}

// NewPublisher creates a Publisher.
func NewPublisher() *Publisher { return &Publisher{} }

// RenderAndPackage implements ports.VideoPublisher.
func (p *Publisher) RenderAndPackage(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ports.NewAdapterError(serviceName, "render_and_package", err)
	}
	return "", ports.NewAdapterError(serviceName, "render_and_package", ports.ErrNotImplemented)
}
