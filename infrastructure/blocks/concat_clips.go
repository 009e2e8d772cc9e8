package blocks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// TypeConcatClips is the registry type name of ConcatClipsBlock.
const TypeConcatClips = "concat_clips"

var _ ports.Block = (*ConcatClipsBlock)(nil)

// ConcatClipsBlock joins clip "a" and clip "b" into one MP4.
//
// The current implementation is a stub that forwards "a" as the output.
// Only "a" is required; "b" is accepted but not yet consumed.
type ConcatClipsBlock struct {
	id     domain.BlockID
	tracer trace.Tracer
}

// NewConcatClipsBlock creates a ConcatClipsBlock.
func NewConcatClipsBlock(id domain.BlockID) (*ConcatClipsBlock, error) {
	if id == "" {
		return nil, ErrEmptyBlockID
	}
	return &ConcatClipsBlock{id: id, tracer: otel.Tracer("concat-clips-block")}, nil
}

// CreateConcatClipsBlock creates a ConcatClipsBlock. It takes no parameters.
func CreateConcatClipsBlock(id domain.BlockID, _ map[string]any) (ports.Block, error) {
	return NewConcatClipsBlock(id)
}

// Spec returns the block's descriptor.
func (c *ConcatClipsBlock) Spec() domain.BlockSpec {
	return domain.BlockSpec{
		ID:   TypeConcatClips,
		Name: "Concat Clips",
		Inputs: []domain.Port{
			{ID: PortA, Kind: domain.PortInput, MIME: MIMEVideoMP4},
			{ID: PortB, Kind: domain.PortInput, MIME: MIMEVideoMP4},
		},
		Outputs: []domain.Port{{ID: PortOut, Kind: domain.PortOutput, MIME: MIMEVideoMP4}},
		Params:  map[string]any{},
	}
}

// Run forwards "a" to "out". It fails with InvalidInput when "a" is missing.
func (c *ConcatClipsBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	_, span := c.tracer.Start(ctx, "ConcatClipsBlock.Run",
		trace.WithAttributes(
			attribute.String("block.type", TypeConcatClips),
			attribute.String("block.id", string(c.id)),
		),
	)
	defer span.End()

	a, err := requireInput(inputs, PortA)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	_, hasB := inputs[PortB]
	span.SetAttributes(attribute.Bool("input.b_present", hasB))

	return domain.Artifacts{PortOut: forward(a, PortOut)}, nil
}
