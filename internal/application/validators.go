package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// blockIDPattern allows identifiers such as "norm", "clip_a" or "intro-1".
	blockIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-\.]{0,99}$`)
	// portIDPattern allows short lowercase port names such as "in" or "out_2".
	portIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,50}$`)
)

// RegisterPipelineValidators registers the pipeline-specific struct tag
// validators "blockid" and "portid" with v.
func RegisterPipelineValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("blockid", validateBlockID); err != nil {
		return fmt.Errorf("failed to register blockid validator: %w", err)
	}

	if err := v.RegisterValidation("portid", validatePortID); err != nil {
		return fmt.Errorf("failed to register portid validator: %w", err)
	}

	return nil
}

// validateBlockID reports whether the field is a well-formed block id.
func validateBlockID(fl validator.FieldLevel) bool {
	return blockIDPattern.MatchString(fl.Field().String())
}

// validatePortID reports whether the field is a well-formed port id.
func validatePortID(fl validator.FieldLevel) bool {
	return portIDPattern.MatchString(fl.Field().String())
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0 &&
		value == fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// decodeBlockParams converts a block's params node into a map. An absent
// node yields an empty map; anything other than a mapping is rejected.
func decodeBlockParams(node yaml.Node) (map[string]any, error) {
	params := make(map[string]any)
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return params, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("params must be a mapping, got %s", nodeKindName(node.Kind))
	}
	if err := node.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return params, nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
