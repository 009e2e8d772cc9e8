// Package blocks provides the concrete processing blocks that implement the
// ports.Block interface for the pipeline engine.
package blocks

import (
	"errors"
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
)

// Port ids shared by the built-in blocks.
const (
	PortIn  domain.PortID = "in"
	PortOut domain.PortID = "out"
	PortA   domain.PortID = "a"
	PortB   domain.PortID = "b"
)

// MIME types the built-in blocks declare.
const (
	MIMEAudioWAV  = "audio/wav"
	MIMEVideoMP4  = "video/mp4"
	MIMEDirectory = "inode/directory"
	MIMEText      = "text/plain"
)

// Common errors returned when constructing blocks.
var (
	// ErrEmptyBlockID is returned when attempting to create a block with an empty id.
	ErrEmptyBlockID = errors.New("block id cannot be empty")

	// ErrNilAdapter is returned when a block that needs an external adapter gets none.
	ErrNilAdapter = errors.New("adapter cannot be nil")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// decodeParams overlays params onto cfg by round-tripping through YAML and
// then validates the result.
func decodeParams(params map[string]any, cfg any) error {
	if len(params) > 0 {
		data, err := yaml.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// requireInput returns the artifact delivered on port, or an InvalidInput
// error naming the port.
func requireInput(inputs domain.Artifacts, port domain.PortID) (domain.Artifact, error) {
	artifact, ok := inputs[port]
	if !ok {
		return domain.Artifact{}, domain.NewInvalidInputError(fmt.Sprintf("missing '%s'", port))
	}
	return artifact, nil
}

// forward re-publishes an input artifact on an output port.
func forward(in domain.Artifact, port domain.PortID) domain.Artifact {
	return domain.Artifact{
		Port: port,
		Path: in.Path,
		Meta: maps.Clone(in.Meta),
	}
}
