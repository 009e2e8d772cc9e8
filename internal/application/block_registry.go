package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/softwarewrighter/hybrid-vid/infrastructure/blocks"
	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// ErrUnknownBlockType is returned when no factory is registered for a type.
var ErrUnknownBlockType = errors.New("unsupported block type")

// maxSuggestionDistance bounds how far a misspelt type may be from a
// registered one and still be suggested.
const maxSuggestionDistance = 3

// Verify interface compliance at compile time.
var _ ports.BlockRegistry = (*DefaultBlockRegistry)(nil)

// DefaultBlockRegistry implements the BlockRegistry interface, providing a
// factory for creating blocks by type name. Type lookup is case-insensitive.
// It supports dynamic registration of block factories and injects external
// adapters into the blocks that need them.
type DefaultBlockRegistry struct {
	// factories maps case-folded block type names to their factories.
	factories map[string]ports.BlockFactory
	// names maps case-folded type names to the name they were registered as.
	names map[string]string
	// mu protects concurrent access to factories and names.
	mu sync.RWMutex
	// fold normalizes type names for lookup.
	fold cases.Caser
}

// NewDefaultBlockRegistry creates a block registry with the built-in block
// types pre-registered. The uploader and publisher are handed to the
// upload_video and render_package blocks; when nil those types are omitted.
func NewDefaultBlockRegistry(
	uploader ports.VideoUploader,
	publisher ports.VideoPublisher,
) *DefaultBlockRegistry {
	registry := &DefaultBlockRegistry{
		factories: make(map[string]ports.BlockFactory),
		names:     make(map[string]string),
		fold:      cases.Fold(),
	}

	registry.register(blocks.TypeSource, blocks.CreateSourceBlock)
	registry.register(blocks.TypeNormalizeAudio, blocks.CreateNormalizeAudioBlock)
	registry.register(blocks.TypeConcatClips, blocks.CreateConcatClipsBlock)
	if uploader != nil {
		registry.register(blocks.TypeUploadVideo, blocks.UploadVideoFactory(uploader))
	}
	if publisher != nil {
		registry.register(blocks.TypeRenderPackage, blocks.RenderPackageFactory(publisher))
	}

	return registry
}

// key returns the lookup key for blockType. cases.Caser is stateful, so
// callers must hold mu.
func (r *DefaultBlockRegistry) key(blockType string) string {
	return r.fold.String(strings.TrimSpace(blockType))
}

func (r *DefaultBlockRegistry) register(blockType string, factory ports.BlockFactory) {
	k := r.key(blockType)
	r.factories[k] = factory
	r.names[k] = blockType
}

// CreateBlock creates a new block of blockType under id with params.
// Unknown types fail with ErrUnknownBlockType and, when a registered type is
// close enough, a suggestion.
func (r *DefaultBlockRegistry) CreateBlock(
	blockType string,
	id domain.BlockID,
	params map[string]any,
) (ports.Block, error) {
	r.mu.Lock()
	k := r.key(blockType)
	factory, exists := r.factories[k]
	suggestion := ""
	if !exists {
		suggestion = r.suggest(k)
	}
	r.mu.Unlock()

	if !exists {
		if suggestion != "" {
			return nil, fmt.Errorf("%w: %s (did you mean %q?)", ErrUnknownBlockType, blockType, suggestion)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlockType, blockType)
	}

	if id == "" {
		return nil, fmt.Errorf("block ID cannot be empty")
	}

	if params == nil {
		params = make(map[string]any)
	}

	block, err := factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create block %s of type %s: %w", id, blockType, err)
	}

	return block, nil
}

// suggest returns the registered type closest to key, or "" when none is
// within maxSuggestionDistance. Callers must hold mu.
func (r *DefaultBlockRegistry) suggest(key string) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for candidate, name := range r.names {
		d := levenshtein.ComputeDistance(key, candidate)
		if d < bestDistance || (d == bestDistance && name < best) {
			best, bestDistance = name, d
		}
	}
	return best
}

// RegisterBlockFactory registers a factory for blockType, replacing any
// factory already registered under a case-insensitively equal name.
func (r *DefaultBlockRegistry) RegisterBlockFactory(
	blockType string,
	factory ports.BlockFactory,
) error {
	if strings.TrimSpace(blockType) == "" {
		return fmt.Errorf("block type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.register(blockType, factory)
	return nil
}

// GetSupportedTypes returns every registered block type, sorted.
func (r *DefaultBlockRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.names))
	for _, name := range r.names {
		types = append(types, name)
	}
	sort.Strings(types)

	return types
}

// IsSupported reports whether a factory is registered for blockType.
func (r *DefaultBlockRegistry) IsSupported(blockType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.factories[r.key(blockType)]
	return ok
}
