package blocks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// TypeRenderPackage is the registry type name of RenderPackageBlock.
const TypeRenderPackage = "render_package"

var _ ports.Block = (*RenderPackageBlock)(nil)

// RenderPackageBlock renders a project directory through a
// ports.VideoPublisher. The directory comes from the "in" artifact when one
// is delivered and from the project_dir parameter otherwise.
type RenderPackageBlock struct {
	id        domain.BlockID
	config    RenderPackageConfig
	publisher ports.VideoPublisher
	tracer    trace.Tracer
}

// RenderPackageConfig configures RenderPackageBlock.
type RenderPackageConfig struct {
	ProjectDir string `yaml:"project_dir" json:"project_dir"`
}

// NewRenderPackageBlock creates a RenderPackageBlock bound to publisher.
func NewRenderPackageBlock(
	id domain.BlockID,
	config RenderPackageConfig,
	publisher ports.VideoPublisher,
) (*RenderPackageBlock, error) {
	if id == "" {
		return nil, ErrEmptyBlockID
	}
	if publisher == nil {
		return nil, ErrNilAdapter
	}
	return &RenderPackageBlock{
		id:        id,
		config:    config,
		publisher: publisher,
		tracer:    otel.Tracer("render-package-block"),
	}, nil
}

// RenderPackageFactory returns a ports.BlockFactory that builds
// RenderPackageBlocks bound to publisher.
func RenderPackageFactory(publisher ports.VideoPublisher) ports.BlockFactory {
	return func(id domain.BlockID, params map[string]any) (ports.Block, error) {
		var cfg RenderPackageConfig
		if err := decodeParams(params, &cfg); err != nil {
			return nil, err
		}
		return NewRenderPackageBlock(id, cfg, publisher)
	}
}

// Spec returns the block's descriptor.
func (r *RenderPackageBlock) Spec() domain.BlockSpec {
	return domain.BlockSpec{
		ID:      TypeRenderPackage,
		Name:    "Render and Package",
		Inputs:  []domain.Port{{ID: PortIn, Kind: domain.PortInput, MIME: MIMEDirectory}},
		Outputs: []domain.Port{{ID: PortOut, Kind: domain.PortOutput, MIME: MIMEVideoMP4}},
		Params:  map[string]any{"project_dir": r.config.ProjectDir},
	}
}

// Run renders the project and publishes the package path on "out".
func (r *RenderPackageBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	ctx, span := r.tracer.Start(ctx, "RenderPackageBlock.Run",
		trace.WithAttributes(
			attribute.String("block.type", TypeRenderPackage),
			attribute.String("block.id", string(r.id)),
		),
	)
	defer span.End()

	projectDir := r.config.ProjectDir
	if in, ok := inputs[PortIn]; ok {
		projectDir = in.Path
	}
	if projectDir == "" {
		err := domain.NewInvalidInputError("missing 'in' and no project_dir configured")
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("project.dir", projectDir))

	pkg, err := r.publisher.RenderAndPackage(ctx, projectDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, domain.WrapProcessingError("render and package failed", err)
	}

	return domain.Artifacts{PortOut: {Port: PortOut, Path: pkg}}, nil
}
