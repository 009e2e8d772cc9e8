// Package domain contains pure, dependency-free domain models and types
// for the block pipeline engine.
package domain

import "maps"

// BlockID identifies a block within a registry and within a GraphSpec.
type BlockID string

// PortID identifies a port. It is unique only within the declared ports of
// a single block.
type PortID string

// PortKind distinguishes input slots from output slots on a block.
type PortKind string

const (
	// PortInput marks a port that receives an artifact from upstream.
	PortInput PortKind = "input"
	// PortOutput marks a port on which a block publishes an artifact.
	PortOutput PortKind = "output"
)

// Port is a typed slot on a block.
// MIME is descriptive metadata only; connected ports are never checked for
// compatibility.
type Port struct {
	ID   PortID   `json:"id" yaml:"id"`
	Kind PortKind `json:"kind" yaml:"kind"`
	MIME string   `json:"mime" yaml:"mime"`
}

// BlockSpec is the static, introspectable descriptor of a block.
// It is independent of any particular run and is used for listing
// available blocks to CLIs and UIs.
type BlockSpec struct {
	// ID is the canonical type identifier of the block, e.g. "normalize_audio".
	ID BlockID `json:"id" yaml:"id"`
	// Name is the human-readable display name.
	Name string `json:"name" yaml:"name"`
	// Inputs lists the ports the block may read.
	Inputs []Port `json:"inputs" yaml:"inputs"`
	// Outputs lists the ports the block may produce.
	Outputs []Port `json:"outputs" yaml:"outputs"`
	// Params holds JSON-compatible configuration values.
	Params map[string]any `json:"params" yaml:"params"`
}

// Artifact references data produced by a block (not the data itself)
// plus free-form metadata. Artifacts are immutable once produced.
type Artifact struct {
	Port PortID            `json:"port" yaml:"port"`
	Path string            `json:"path" yaml:"path"`
	Meta map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Clone returns a deep copy of the artifact so that a consumer can never
// reach the metadata map recorded for its producer.
func (a Artifact) Clone() Artifact {
	return Artifact{
		Port: a.Port,
		Path: a.Path,
		Meta: maps.Clone(a.Meta),
	}
}

// Artifacts maps port ids to the artifact delivered to, or produced on, that port.
type Artifacts map[PortID]Artifact

// Results maps block ids to the outputs of every block that executed
// successfully during a run.
type Results map[BlockID]Artifacts
