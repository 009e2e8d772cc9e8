package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockError(t *testing.T) {
	cause := errors.New("ffmpeg exited 1")

	tests := []struct {
		name     string
		err      *BlockError
		wantMsg  string
		wantKind error
		notKind  error
	}{
		{
			name:     "invalid input",
			err:      NewInvalidInputError("missing 'in'"),
			wantMsg:  "invalid input: missing 'in'",
			wantKind: ErrInvalidInput,
			notKind:  ErrProcessing,
		},
		{
			name:     "processing",
			err:      NewProcessingError("encoder crashed"),
			wantMsg:  "processing failed: encoder crashed",
			wantKind: ErrProcessing,
			notKind:  ErrInvalidInput,
		},
		{
			name:     "wrapped cause",
			err:      WrapProcessingError("encode", cause),
			wantMsg:  "processing failed: encode",
			wantKind: ErrProcessing,
			notKind:  ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.wantKind))
			assert.False(t, errors.Is(tt.err, tt.notKind))
		})
	}

	t.Run("unwraps cause", func(t *testing.T) {
		err := WrapProcessingError("encode", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("message falls back to cause", func(t *testing.T) {
		err := &BlockError{Kind: Processing, Err: cause}
		assert.Equal(t, "processing failed: ffmpeg exited 1", err.Error())
	})
}

func TestExecutionError(t *testing.T) {
	t.Run("missing block", func(t *testing.T) {
		err := NewMissingBlockError("B")

		assert.Equal(t, "missing block: B", err.Error())
		assert.ErrorIs(t, err, ErrMissingBlock)
		assert.NotErrorIs(t, err, ErrCycle)
		assert.Equal(t, BlockID("B"), err.BlockID)
	})

	t.Run("cycle", func(t *testing.T) {
		err := NewCycleError()

		assert.Equal(t, "cycle detected in graph", err.Error())
		assert.ErrorIs(t, err, ErrCycle)
		assert.NotErrorIs(t, err, ErrBlockFailed)
	})

	t.Run("block failure keeps the original error", func(t *testing.T) {
		blockErr := NewInvalidInputError("missing 'a'")
		err := NewBlockFailedError("concat", blockErr)

		assert.Equal(t, "block error: invalid input: missing 'a'", err.Error())
		assert.ErrorIs(t, err, ErrBlockFailed)
		assert.ErrorIs(t, err, ErrInvalidInput)

		var got *BlockError
		require.True(t, errors.As(err, &got))
		assert.Equal(t, InvalidInput, got.Kind)
	})

	t.Run("survives further wrapping", func(t *testing.T) {
		err := fmt.Errorf("run pipeline: %w", NewMissingBlockError("X"))

		var execErr *ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, MissingBlock, execErr.Kind)
		assert.Equal(t, BlockID("X"), execErr.BlockID)
	})
}

func TestBlockErrorKind_String(t *testing.T) {
	assert.Equal(t, "invalid_input", InvalidInput.String())
	assert.Equal(t, "processing", Processing.String())
	assert.Equal(t, "unknown", BlockErrorKind(42).String())
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Pipeline")
		err.AddError("duplicate block id")

		assert.Equal(t, "validation error for Pipeline: duplicate block id", err.Error())
		assert.True(t, err.HasErrors())
		assert.Len(t, err.Errors, 1)
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("Pipeline")
		err.AddError("unknown block type")
		err.AddError("edge references undeclared block")

		assert.Contains(t, err.Error(), "validation errors for Pipeline")
		assert.Len(t, err.Errors, 2)
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")
		assert.False(t, err.HasErrors())
	})
}
