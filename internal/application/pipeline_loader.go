package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/softwarewrighter/hybrid-vid/infrastructure/middleware"
	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// Pipeline is a loaded pipeline: the graph to run, the options to run it
// with and the block instances the graph refers to.
// WARNING: Pipelines returned by PipelineLoader are cached and shared.
// Callers MUST NOT mutate them.
type Pipeline struct {
	// Name comes from the configuration metadata.
	Name string
	// Spec is the graph to execute.
	Spec domain.GraphSpec
	// Options are the execution options from the configuration.
	Options domain.ExecutionOptions
	// BlockTimeout bounds each block's Run when positive.
	BlockTimeout time.Duration
	// Blocks holds the instantiated blocks keyed by id.
	Blocks map[domain.BlockID]ports.Block
}

// Install registers every block of the pipeline with engine, wrapped in a
// timeout when BlockTimeout is set. Blocks already registered under the
// same ids are replaced.
func (p *Pipeline) Install(engine *Engine) {
	timeout := middleware.TimeoutMiddleware(p.BlockTimeout)
	for _, id := range p.Spec.Blocks {
		engine.Register(id, timeout(id, p.Blocks[id]))
	}
}

// PipelineLoader provides YAML configuration parsing, validation and
// caching for pipelines, transforming declarative YAML into a GraphSpec
// with instantiated blocks.
type PipelineLoader struct {
	// validator performs struct field validation including the custom
	// pipeline rules.
	validator *validator.Validate
	// registry creates blocks by type name.
	registry ports.BlockRegistry
	// cache stores loaded pipelines indexed by SHA256 hash of the
	// normalized configuration.
	cache map[string]*Pipeline
	// cacheMu guards cache.
	cacheMu sync.RWMutex
	// sf prevents duplicate block instantiation when multiple goroutines
	// load the same configuration simultaneously.
	sf singleflight.Group
}

// NewPipelineLoader creates a loader that instantiates blocks through
// registry. It returns an error if validator registration fails.
func NewPipelineLoader(registry ports.BlockRegistry) (*PipelineLoader, error) {
	v := validator.New()

	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &PipelineLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]*Pipeline),
	}, nil
}

// LoadFromFile loads a pipeline from a YAML file.
func (pl *PipelineLoader) LoadFromFile(ctx context.Context, path string) (*Pipeline, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, ports.NewConfigError(path, fmt.Errorf("failed to read file: %w", err))
	}

	return pl.load(ctx, data)
}

// LoadFromReader loads a pipeline from r.
func (pl *PipelineLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Pipeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return pl.load(ctx, data)
}

// load parses, validates and builds a pipeline, serving repeated loads of
// the same normalized configuration from the cache.
func (pl *PipelineLoader) load(ctx context.Context, data []byte) (*Pipeline, error) {
	config, err := pl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := pl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := pl.sf.Do(hash, func() (any, error) {
		if pipeline, ok := pl.getCachedPipeline(hash); ok {
			return pipeline, nil
		}

		if err := pl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pipeline, err := pl.buildPipeline(config)
		if err != nil {
			return nil, fmt.Errorf("failed to build pipeline: %w", err)
		}

		pl.cachePipeline(hash, pipeline)
		return pipeline, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Pipeline), nil
}

// parseYAML decodes data in strict mode so unknown fields are rejected
// instead of silently ignored.
func (pl *PipelineLoader) parseYAML(data []byte) (*PipelineConfig, error) {
	var config PipelineConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct tag validation followed by semantic checks.
func (pl *PipelineLoader) validateConfig(config *PipelineConfig) error {
	if err := pl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := pl.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics checks the rules struct tags cannot express: unique
// block ids, edges that reference declared blocks and an acyclic graph.
func (pl *PipelineLoader) validateSemantics(config *PipelineConfig) error {
	verr := domain.NewValidationError("pipeline")

	declared := make(map[string]struct{}, len(config.Blocks))
	for _, block := range config.Blocks {
		if _, exists := declared[block.ID]; exists {
			verr.AddError(fmt.Sprintf("duplicate block ID %q", block.ID))
			continue
		}
		declared[block.ID] = struct{}{}
	}

	for i, edge := range config.Edges {
		if _, exists := declared[edge.FromBlock]; !exists {
			verr.AddError(fmt.Sprintf("edge %d references non-existent source block: %s", i, edge.FromBlock))
		}
		if _, exists := declared[edge.ToBlock]; !exists {
			verr.AddError(fmt.Sprintf("edge %d references non-existent target block: %s", i, edge.ToBlock))
		}
	}

	if verr.HasErrors() {
		return verr
	}

	if _, err := newBlockGraph(specFromConfig(config)).topologicalSort(); err != nil {
		return err
	}

	return nil
}

// specFromConfig converts the declared blocks and edges into a GraphSpec.
func specFromConfig(config *PipelineConfig) domain.GraphSpec {
	spec := domain.GraphSpec{
		Blocks: make([]domain.BlockID, 0, len(config.Blocks)),
		Edges:  make([]domain.Edge, 0, len(config.Edges)),
	}
	for _, block := range config.Blocks {
		spec.Blocks = append(spec.Blocks, domain.BlockID(block.ID))
	}
	for _, edge := range config.Edges {
		spec.Edges = append(spec.Edges, domain.Edge{
			FromBlock: domain.BlockID(edge.FromBlock),
			FromPort:  domain.PortID(edge.FromPort),
			ToBlock:   domain.BlockID(edge.ToBlock),
			ToPort:    domain.PortID(edge.ToPort),
		})
	}
	return spec
}

// buildPipeline instantiates every declared block through the registry.
func (pl *PipelineLoader) buildPipeline(config *PipelineConfig) (*Pipeline, error) {
	pipeline := &Pipeline{
		Name: config.Metadata.Name,
		Spec: specFromConfig(config),
		Options: domain.ExecutionOptions{
			StopOnError: config.Options.StopOnError,
			Concurrency: config.Options.Concurrency,
		},
		BlockTimeout: time.Duration(config.Options.BlockTimeoutSeconds) * time.Second,
		Blocks:       make(map[domain.BlockID]ports.Block, len(config.Blocks)),
	}

	for _, blockConfig := range config.Blocks {
		params, err := decodeBlockParams(blockConfig.Params)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", blockConfig.ID, err)
		}

		id := domain.BlockID(blockConfig.ID)
		block, err := pl.registry.CreateBlock(blockConfig.Type, id, params)
		if err != nil {
			return nil, fmt.Errorf("failed to create block %s: %w", blockConfig.ID, err)
		}
		pipeline.Blocks[id] = block
	}

	return pipeline, nil
}

// calculateConfigHash computes the SHA256 hash of the re-encoded config so
// that semantically identical files share a cache entry regardless of
// whitespace or comments.
func (pl *PipelineLoader) calculateConfigHash(config *PipelineConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (pl *PipelineLoader) getCachedPipeline(hash string) (*Pipeline, bool) {
	pl.cacheMu.RLock()
	defer pl.cacheMu.RUnlock()

	pipeline, ok := pl.cache[hash]
	return pipeline, ok
}

func (pl *PipelineLoader) cachePipeline(hash string, pipeline *Pipeline) {
	pl.cacheMu.Lock()
	defer pl.cacheMu.Unlock()

	pl.cache[hash] = pipeline
}

// ClearCache removes all cached pipelines, forcing subsequent loads to
// rebuild their blocks.
func (pl *PipelineLoader) ClearCache() {
	pl.cacheMu.Lock()
	defer pl.cacheMu.Unlock()

	pl.cache = make(map[string]*Pipeline)
}

// registerCustomValidators registers semver and the pipeline validators.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := RegisterPipelineValidators(v); err != nil {
		return fmt.Errorf("failed to register pipeline validators: %w", err)
	}

	return nil
}
