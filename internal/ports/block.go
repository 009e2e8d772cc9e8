// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
)

// Block is the capability every processing unit implements.
// Blocks are pure request/response units with no awareness of the graph
// they run in; the engine alone decides which artifacts they receive.
type Block interface {
	// Spec returns the block's static descriptor.
	// Spec must be pure and side-effect-free. It is used only for
	// introspection and listing and is not required to match the ports
	// Run actually reads or writes.
	Spec() domain.BlockSpec

	// Run executes the block with exactly the inputs the engine delivered.
	// A required port that is absent must be reported as a
	// domain.InvalidInput BlockError; any other failure as domain.Processing.
	// Run must return an entry for every output port downstream blocks
	// should see; omitted ports are treated as absent, not empty.
	//
	// Run may be called concurrently for different runs and must not
	// modify the inputs it receives.
	Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error)
}

// BlockFactory creates a block instance from its id and decoded parameters.
type BlockFactory func(id domain.BlockID, params map[string]any) (Block, error)

// BlockRegistry resolves block type names to factories.
// It is used by configuration loaders to instantiate blocks declared in
// pipeline files.
type BlockRegistry interface {
	// CreateBlock instantiates a block of the given type.
	// It returns an error if the type is unknown or the parameters are invalid.
	CreateBlock(blockType string, id domain.BlockID, params map[string]any) (Block, error)

	// RegisterBlockFactory installs a factory for a block type, replacing any
	// existing factory for that type.
	RegisterBlockFactory(blockType string, factory BlockFactory) error

	// GetSupportedTypes returns every registered block type in sorted order.
	GetSupportedTypes() []string
}

// BlockMiddleware decorates a block with a cross-cutting concern such as
// tracing, metrics, throttling or timeouts. The id is the registry id the
// block is installed under.
type BlockMiddleware func(id domain.BlockID, next Block) Block
