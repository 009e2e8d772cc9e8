package domain

// Edge is a directed data dependency: the artifact produced at FromPort of
// FromBlock becomes available as input ToPort on ToBlock.
type Edge struct {
	FromBlock BlockID `json:"from_block" yaml:"from_block"`
	FromPort  PortID  `json:"from_port" yaml:"from_port"`
	ToBlock   BlockID `json:"to_block" yaml:"to_block"`
	ToPort    PortID  `json:"to_port" yaml:"to_port"`
}

// GraphSpec is the static shape of one pipeline run.
// Only blocks listed in Blocks participate in scheduling, even if the engine
// has additional blocks registered.
type GraphSpec struct {
	Blocks []BlockID `json:"blocks" yaml:"blocks"`
	Edges  []Edge    `json:"edges" yaml:"edges"`
}

// Contains reports whether id is one of the participating blocks.
func (g GraphSpec) Contains(id BlockID) bool {
	for _, b := range g.Blocks {
		if b == id {
			return true
		}
	}
	return false
}

// ExecutionOptions is the run-wide failure and scheduling policy.
// The zero value continues past block failures and runs blocks one at a time.
type ExecutionOptions struct {
	// StopOnError aborts the run at the first block-level failure.
	StopOnError bool `json:"stop_on_error" yaml:"stop_on_error"`
	// Concurrency bounds how many blocks may run at once. Values <= 1
	// select strictly sequential execution in topological order.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}
