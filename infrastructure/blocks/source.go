package blocks

import (
	"context"
	"maps"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// TypeSource is the registry type name of SourceBlock.
const TypeSource = "source"

var _ ports.Block = (*SourceBlock)(nil)

// SourceBlock publishes a fixed artifact on its "out" port. It has no inputs
// and is how pipelines are seeded with files that already exist on disk.
type SourceBlock struct {
	id     domain.BlockID
	config SourceConfig
}

// SourceConfig configures the artifact a SourceBlock publishes.
type SourceConfig struct {
	// Path is the location of the existing file.
	Path string `yaml:"path" json:"path" validate:"required"`
	// MIME describes the file for listings. Defaults to audio/wav.
	MIME string `yaml:"mime" json:"mime"`
	// Meta is copied onto the published artifact.
	Meta map[string]string `yaml:"meta" json:"meta"`
}

// NewSourceBlock creates a SourceBlock with a validated configuration.
func NewSourceBlock(id domain.BlockID, config SourceConfig) (*SourceBlock, error) {
	if id == "" {
		return nil, ErrEmptyBlockID
	}
	if config.MIME == "" {
		config.MIME = MIMEAudioWAV
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &SourceBlock{id: id, config: config}, nil
}

// CreateSourceBlock creates a SourceBlock from a parameter map, following
// the ports.BlockFactory pattern.
func CreateSourceBlock(id domain.BlockID, params map[string]any) (ports.Block, error) {
	var cfg SourceConfig
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewSourceBlock(id, cfg)
}

// Spec returns the source's descriptor.
func (s *SourceBlock) Spec() domain.BlockSpec {
	return domain.BlockSpec{
		ID:      TypeSource,
		Name:    "Source File",
		Outputs: []domain.Port{{ID: PortOut, Kind: domain.PortOutput, MIME: s.config.MIME}},
		Params: map[string]any{
			"path": s.config.Path,
			"mime": s.config.MIME,
		},
	}
}

// Run publishes the configured artifact. Inputs are ignored.
func (s *SourceBlock) Run(ctx context.Context, _ domain.Artifacts) (domain.Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapProcessingError("source cancelled", err)
	}
	return domain.Artifacts{
		PortOut: {Port: PortOut, Path: s.config.Path, Meta: maps.Clone(s.config.Meta)},
	}, nil
}
