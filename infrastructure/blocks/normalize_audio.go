package blocks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// TypeNormalizeAudio is the registry type name of NormalizeAudioBlock.
const TypeNormalizeAudio = "normalize_audio"

// DefaultTargetLUFS is the loudness target used when none is configured.
const DefaultTargetLUFS = -16.0

var _ ports.Block = (*NormalizeAudioBlock)(nil)

// NormalizeAudioBlock normalizes the loudness of a WAV file.
//
// The current implementation is a stub: it re-publishes its "in" artifact
// unchanged on "out". The target loudness is carried in the descriptor so
// listings show what a real implementation will honor.
//
// Concurrency: NormalizeAudioBlock is stateless and safe for concurrent use.
type NormalizeAudioBlock struct {
	id     domain.BlockID
	config NormalizeAudioConfig
	tracer trace.Tracer
}

// NormalizeAudioConfig controls loudness normalization.
type NormalizeAudioConfig struct {
	// TargetLUFS is the integrated loudness target in LUFS.
	// Default: -16.
	TargetLUFS float64 `yaml:"target_lufs" json:"target_lufs" validate:"gte=-70,lte=0"`
}

// DefaultNormalizeAudioConfig returns the streaming-platform loudness target.
func DefaultNormalizeAudioConfig() NormalizeAudioConfig {
	return NormalizeAudioConfig{TargetLUFS: DefaultTargetLUFS}
}

// NewNormalizeAudioBlock creates a NormalizeAudioBlock with a validated configuration.
func NewNormalizeAudioBlock(id domain.BlockID, config NormalizeAudioConfig) (*NormalizeAudioBlock, error) {
	if id == "" {
		return nil, ErrEmptyBlockID
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &NormalizeAudioBlock{
		id:     id,
		config: config,
		tracer: otel.Tracer("normalize-audio-block"),
	}, nil
}

// CreateNormalizeAudioBlock creates a NormalizeAudioBlock from a parameter
// map. Missing keys keep their defaults.
func CreateNormalizeAudioBlock(id domain.BlockID, params map[string]any) (ports.Block, error) {
	cfg := DefaultNormalizeAudioConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewNormalizeAudioBlock(id, cfg)
}

// Spec returns the block's descriptor.
func (n *NormalizeAudioBlock) Spec() domain.BlockSpec {
	return domain.BlockSpec{
		ID:      TypeNormalizeAudio,
		Name:    "Normalize Audio",
		Inputs:  []domain.Port{{ID: PortIn, Kind: domain.PortInput, MIME: MIMEAudioWAV}},
		Outputs: []domain.Port{{ID: PortOut, Kind: domain.PortOutput, MIME: MIMEAudioWAV}},
		Params:  map[string]any{"target_lufs": n.config.TargetLUFS},
	}
}

// Run passes the "in" artifact through to "out".
// It fails with InvalidInput when "in" was not delivered.
func (n *NormalizeAudioBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	_, span := n.tracer.Start(ctx, "NormalizeAudioBlock.Run",
		trace.WithAttributes(
			attribute.String("block.type", TypeNormalizeAudio),
			attribute.String("block.id", string(n.id)),
			attribute.Float64("config.target_lufs", n.config.TargetLUFS),
		),
	)
	defer span.End()

	in, err := requireInput(inputs, PortIn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("artifact.path", in.Path))
	return domain.Artifacts{PortOut: forward(in, PortOut)}, nil
}
