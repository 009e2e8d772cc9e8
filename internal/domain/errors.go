package domain

import (
	"errors"
	"fmt"
)

// Block-level failure kinds. These are recoverable under the engine's
// default policy and are matched with errors.Is.
var (
	// ErrInvalidInput indicates a block was handed inputs it cannot use,
	// most commonly a required port that was never delivered.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProcessing indicates any other internal failure of a block.
	ErrProcessing = errors.New("processing failed")
)

// Structural failure kinds. These are always fatal to a run.
var (
	// ErrMissingBlock indicates a participating block id has no registered
	// implementation.
	ErrMissingBlock = errors.New("missing block")

	// ErrCycle indicates the graph's edges contain a directed cycle.
	ErrCycle = errors.New("cycle detected in graph")

	// ErrBlockFailed indicates a block failure aborted a run that was
	// configured to stop on error.
	ErrBlockFailed = errors.New("block error")
)

// BlockErrorKind classifies a BlockError.
type BlockErrorKind int

const (
	// InvalidInput means required inputs were missing or unusable.
	InvalidInput BlockErrorKind = iota
	// Processing means the block failed while doing its work.
	Processing
)

// String returns the kind's name.
func (k BlockErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Processing:
		return "processing"
	default:
		return "unknown"
	}
}

// BlockError is the error a block returns from Run.
type BlockError struct {
	// Kind classifies the failure.
	Kind BlockErrorKind

	// Message describes the failure for humans.
	Message string

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface for BlockError.
func (e *BlockError) Error() string {
	prefix := ErrProcessing.Error()
	if e.Kind == InvalidInput {
		prefix = ErrInvalidInput.Error()
	}
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BlockError) Unwrap() error { return e.Err }

// Is matches the kind sentinels ErrInvalidInput and ErrProcessing.
func (e *BlockError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == InvalidInput
	case ErrProcessing:
		return e.Kind == Processing
	}
	return false
}

// NewInvalidInputError creates a BlockError of kind InvalidInput.
func NewInvalidInputError(msg string) *BlockError {
	return &BlockError{Kind: InvalidInput, Message: msg}
}

// NewProcessingError creates a BlockError of kind Processing.
func NewProcessingError(msg string) *BlockError {
	return &BlockError{Kind: Processing, Message: msg}
}

// WrapProcessingError creates a Processing BlockError around err.
func WrapProcessingError(msg string, err error) *BlockError {
	return &BlockError{Kind: Processing, Message: msg, Err: err}
}

// ExecutionErrorKind classifies an ExecutionError.
type ExecutionErrorKind int

const (
	// MissingBlock means a participating block is not registered.
	MissingBlock ExecutionErrorKind = iota
	// Cycle means no topological order exists.
	Cycle
	// BlockFailed means a block failure aborted the run.
	BlockFailed
)

// ExecutionError is a run-level failure returned by the engine.
// For BlockFailed it carries the original block error rather than a
// flattened message, so callers can still branch on the block error kind.
type ExecutionError struct {
	// Kind classifies the failure.
	Kind ExecutionErrorKind

	// BlockID names the missing or failing block. It is empty for Cycle.
	BlockID BlockID

	// Err is the block's error for BlockFailed.
	Err error
}

// Error implements the error interface for ExecutionError.
func (e *ExecutionError) Error() string {
	switch e.Kind {
	case MissingBlock:
		return fmt.Sprintf("%s: %s", ErrMissingBlock, e.BlockID)
	case Cycle:
		return ErrCycle.Error()
	default:
		return fmt.Sprintf("%s: %v", ErrBlockFailed, e.Err)
	}
}

// Unwrap returns the wrapped block error for BlockFailed.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is matches the structural sentinels.
func (e *ExecutionError) Is(target error) bool {
	switch target {
	case ErrMissingBlock:
		return e.Kind == MissingBlock
	case ErrCycle:
		return e.Kind == Cycle
	case ErrBlockFailed:
		return e.Kind == BlockFailed
	}
	return false
}

// NewMissingBlockError creates an ExecutionError naming the unregistered block.
func NewMissingBlockError(id BlockID) *ExecutionError {
	return &ExecutionError{Kind: MissingBlock, BlockID: id}
}

// NewCycleError creates an ExecutionError for a cyclic graph.
func NewCycleError() *ExecutionError {
	return &ExecutionError{Kind: Cycle}
}

// NewBlockFailedError creates an ExecutionError wrapping a block's failure.
func NewBlockFailedError(id BlockID, err error) *ExecutionError {
	return &ExecutionError{Kind: BlockFailed, BlockID: id, Err: err}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
