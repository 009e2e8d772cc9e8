package application

import (
	"gopkg.in/yaml.v3"
)

// PipelineConfig is the declarative YAML form of a pipeline: the blocks to
// instantiate, the edges between their ports and the execution options.
// It is the primary configuration entry point for the CLIs.
type PipelineConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the pipeline.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Options controls how the pipeline is executed.
	Options OptionsConfig `yaml:"options"`
	// Blocks declares the block instances in list order. The order is the
	// scheduler's tie-break among blocks that are ready at the same time.
	Blocks []BlockConfig `yaml:"blocks" validate:"required,min=1,dive"`
	// Edges connect output ports to input ports.
	Edges []EdgeConfig `yaml:"edges" validate:"dive"`
}

// Metadata provides descriptive information about a pipeline.
type Metadata struct {
	// Name is the human-readable identifier for this pipeline.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains what the pipeline produces.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for grouping pipelines.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// OptionsConfig mirrors domain.ExecutionOptions plus per-block settings the
// loader turns into middleware.
type OptionsConfig struct {
	// StopOnError aborts the run at the first failing block.
	StopOnError bool `yaml:"stop_on_error"`
	// Concurrency bounds how many blocks run at once. 0 and 1 run
	// sequentially.
	Concurrency int `yaml:"concurrency" validate:"min=0,max=64"`
	// BlockTimeoutSeconds bounds each block's Run. 0 disables the limit.
	BlockTimeoutSeconds int `yaml:"block_timeout_seconds" validate:"min=0,max=86400"`
}

// BlockConfig declares one block instance.
type BlockConfig struct {
	// ID is the registry id of the instance and the name edges refer to.
	ID string `yaml:"id" validate:"required,blockid"`
	// Type selects the block factory.
	Type string `yaml:"type" validate:"required,min=1,max=100"`
	// Params holds type-specific configuration decoded by the factory.
	Params yaml.Node `yaml:"params"`
}

// EdgeConfig connects from_block.from_port to to_block.to_port.
type EdgeConfig struct {
	FromBlock string `yaml:"from_block" validate:"required,blockid"`
	FromPort  string `yaml:"from_port" validate:"required,portid"`
	ToBlock   string `yaml:"to_block" validate:"required,blockid"`
	ToPort    string `yaml:"to_port" validate:"required,portid"`
}
