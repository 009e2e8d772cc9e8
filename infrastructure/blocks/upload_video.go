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

// TypeUploadVideo is the registry type name of UploadVideoBlock.
const TypeUploadVideo = "upload_video"

// MetaVideoID is the artifact metadata key holding the hosting service's id
// for an uploaded video.
const MetaVideoID = "video_id"

var _ ports.Block = (*UploadVideoBlock)(nil)

// UploadVideoBlock uploads the MP4 delivered on "in" through a
// ports.VideoUploader and publishes a receipt artifact on "out" whose
// metadata carries the assigned video id.
type UploadVideoBlock struct {
	id       domain.BlockID
	config   UploadVideoConfig
	uploader ports.VideoUploader
	tracer   trace.Tracer
}

// UploadVideoConfig holds the listing details sent with the upload.
type UploadVideoConfig struct {
	Title       string `yaml:"title" json:"title" validate:"required,max=100"`
	Description string `yaml:"description" json:"description" validate:"max=5000"`
}

// NewUploadVideoBlock creates an UploadVideoBlock that uploads through uploader.
func NewUploadVideoBlock(
	id domain.BlockID,
	config UploadVideoConfig,
	uploader ports.VideoUploader,
) (*UploadVideoBlock, error) {
	if id == "" {
		return nil, ErrEmptyBlockID
	}
	if uploader == nil {
		return nil, ErrNilAdapter
	}
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &UploadVideoBlock{
		id:       id,
		config:   config,
		uploader: uploader,
		tracer:   otel.Tracer("upload-video-block"),
	}, nil
}

// UploadVideoFactory returns a ports.BlockFactory that builds
// UploadVideoBlocks bound to uploader.
func UploadVideoFactory(uploader ports.VideoUploader) ports.BlockFactory {
	return func(id domain.BlockID, params map[string]any) (ports.Block, error) {
		var cfg UploadVideoConfig
		if err := decodeParams(params, &cfg); err != nil {
			return nil, err
		}
		return NewUploadVideoBlock(id, cfg, uploader)
	}
}

// Spec returns the block's descriptor.
func (u *UploadVideoBlock) Spec() domain.BlockSpec {
	return domain.BlockSpec{
		ID:      TypeUploadVideo,
		Name:    "Upload Video",
		Inputs:  []domain.Port{{ID: PortIn, Kind: domain.PortInput, MIME: MIMEVideoMP4}},
		Outputs: []domain.Port{{ID: PortOut, Kind: domain.PortOutput, MIME: MIMEText}},
		Params: map[string]any{
			"title":       u.config.Title,
			"description": u.config.Description,
		},
	}
}

// Run uploads "in". An uploader failure becomes a Processing error that
// wraps the adapter's error.
func (u *UploadVideoBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	ctx, span := u.tracer.Start(ctx, "UploadVideoBlock.Run",
		trace.WithAttributes(
			attribute.String("block.type", TypeUploadVideo),
			attribute.String("block.id", string(u.id)),
		),
	)
	defer span.End()

	in, err := requireInput(inputs, PortIn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	videoID, err := u.uploader.UploadVideo(ctx, in.Path, u.config.Title, u.config.Description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, domain.WrapProcessingError("upload failed", err)
	}

	span.SetAttributes(attribute.String("video.id", videoID))
	return domain.Artifacts{
		PortOut: {
			Port: PortOut,
			Path: in.Path,
			Meta: map[string]string{MetaVideoID: videoID},
		},
	}, nil
}
