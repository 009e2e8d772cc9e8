package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifact_Clone(t *testing.T) {
	original := Artifact{
		Port: "out",
		Path: "a.wav",
		Meta: map[string]string{"sample_rate": "48000"},
	}

	clone := original.Clone()
	assert.Equal(t, original, clone)

	clone.Meta["sample_rate"] = "44100"
	assert.Equal(t, "48000", original.Meta["sample_rate"], "clone must not share metadata")
}

func TestArtifact_CloneNilMeta(t *testing.T) {
	clone := Artifact{Port: "out", Path: "a.wav"}.Clone()
	assert.Nil(t, clone.Meta)
}

func TestGraphSpec_Contains(t *testing.T) {
	spec := GraphSpec{Blocks: []BlockID{"A", "B"}}

	assert.True(t, spec.Contains("A"))
	assert.True(t, spec.Contains("B"))
	assert.False(t, spec.Contains("C"))
}
