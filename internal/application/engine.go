// Package application wires blocks into executable pipelines: it owns the
// block registry, schedules a GraphSpec topologically and routes artifacts
// between blocks while applying the run's failure policy.
package application

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
	"github.com/softwarewrighter/hybrid-vid/internal/telemetry"
)

// Engine owns a registry of block instances and executes GraphSpecs against
// it. An Engine is an explicit value; create one per session with NewEngine.
//
// The registry is only read during a run, so concurrent runs sharing one
// Engine are safe provided the registered blocks are themselves reentrant.
type Engine struct {
	// blocks maps registry ids to block instances, already wrapped in
	// any configured middleware.
	blocks map[domain.BlockID]ports.Block
	// mu guards blocks.
	mu sync.RWMutex
	// middleware is applied to every block at registration, first entry
	// outermost.
	middleware []ports.BlockMiddleware
	// logger receives run lifecycle and block failure records.
	logger *slog.Logger
	// metrics records run-level metrics when non-nil.
	metrics ports.MetricsCollector
	// tracer creates one span per run.
	tracer trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger. The default discards all records.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the collector for run-level metrics.
func WithMetrics(collector ports.MetricsCollector) EngineOption {
	return func(e *Engine) { e.metrics = collector }
}

// WithTracer overrides the OpenTelemetry tracer used for run spans.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithBlockMiddleware wraps every block registered afterwards in mws.
func WithBlockMiddleware(mws ...ports.BlockMiddleware) EngineOption {
	return func(e *Engine) { e.middleware = append(e.middleware, mws...) }
}

// NewEngine creates an engine with an empty registry.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		blocks: make(map[domain.BlockID]ports.Block),
		logger: telemetry.DiscardLogger(),
		tracer: otel.Tracer("hybrid-vid/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register installs block under id, replacing any block already registered
// there. No validation against any spec is performed.
func (e *Engine) Register(id domain.BlockID, block ports.Block) {
	if block != nil {
		for i := len(e.middleware) - 1; i >= 0; i-- {
			block = e.middleware[i](id, block)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocks[id] = block
}

// Block returns the block registered under id.
func (e *Engine) Block(id domain.BlockID) (ports.Block, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	block, ok := e.blocks[id]
	if !ok || block == nil {
		return nil, false
	}
	return block, true
}

// BlockListing pairs a registry id with the registered block's descriptor.
type BlockListing struct {
	ID   domain.BlockID   `json:"id"`
	Spec domain.BlockSpec `json:"spec"`
}

// List returns every registered block sorted by registry id, for CLIs and
// UIs that display what is available.
func (e *Engine) List() []BlockListing {
	e.mu.RLock()
	defer e.mu.RUnlock()

	listings := make([]BlockListing, 0, len(e.blocks))
	for id, block := range e.blocks {
		if block == nil {
			continue
		}
		listings = append(listings, BlockListing{ID: id, Spec: block.Spec()})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	return listings
}

// TopologicalOrder returns the execution order for spec without running
// anything. It fails with a Cycle ExecutionError if no order exists.
func (e *Engine) TopologicalOrder(spec domain.GraphSpec) ([]domain.BlockID, error) {
	return newBlockGraph(spec).topologicalSort()
}

// RunReport describes a finished or aborted run.
type RunReport struct {
	// RunID uniquely identifies the run in logs and traces.
	RunID string
	// Order is the computed topological order.
	Order []domain.BlockID
	// Results holds outputs of the blocks that succeeded.
	Results domain.Results
	// Failures holds the error of every block whose Run failed.
	Failures map[domain.BlockID]error
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Succeeded reports whether id executed and returned successfully.
func (r *RunReport) Succeeded(id domain.BlockID) bool {
	_, ok := r.Results[id]
	return ok
}

// Failed reports whether id executed and failed.
func (r *RunReport) Failed(id domain.BlockID) bool {
	_, ok := r.Failures[id]
	return ok
}

// Run executes spec and returns the outputs of every block that succeeded.
//
// Structural problems (a cycle, a participating block that is not
// registered) fail the run before any block executes. Block failures abort
// the run only when opts.StopOnError is set; otherwise the failing block is
// simply absent from the result and its dependents see the missing input.
func (e *Engine) Run(
	ctx context.Context,
	spec domain.GraphSpec,
	opts domain.ExecutionOptions,
) (domain.Results, error) {
	report, err := e.RunWithReport(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	return report.Results, nil
}

// RunWithReport behaves like Run but also reports which blocks failed and
// why. On an aborted run the partial report is returned with the error.
func (e *Engine) RunWithReport(
	ctx context.Context,
	spec domain.GraphSpec,
	opts domain.ExecutionOptions,
) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:    uuid.NewString(),
		Results:  make(domain.Results),
		Failures: make(map[domain.BlockID]error),
	}
	logger := telemetry.WithRunID(e.logger, report.RunID)

	ctx, span := e.tracer.Start(ctx, "Engine.Run",
		trace.WithAttributes(
			attribute.String("run.id", report.RunID),
			attribute.Int("run.blocks", len(spec.Blocks)),
			attribute.Int("run.edges", len(spec.Edges)),
			attribute.Bool("run.stop_on_error", opts.StopOnError),
			attribute.Int("run.concurrency", opts.Concurrency),
		),
	)
	defer span.End()
	ctx = telemetry.WithLogger(ctx, logger)

	plan, err := e.plan(spec)
	if err != nil {
		return e.finish(span, logger, report, start, err)
	}
	report.Order = plan.order

	logger.Info("pipeline run started",
		"blocks", len(plan.order),
		"stop_on_error", opts.StopOnError,
		"concurrency", opts.Concurrency,
	)

	if opts.Concurrency > 1 {
		err = e.runConcurrent(ctx, plan, opts, report, logger)
	} else {
		err = e.runSequential(ctx, plan, opts, report, logger)
	}

	return e.finish(span, logger, report, start, err)
}

// finish closes out a run: it stamps the duration, records metrics and the
// span status, and logs the outcome.
func (e *Engine) finish(
	span trace.Span,
	logger *slog.Logger,
	report *RunReport,
	start time.Time,
	err error,
) (*RunReport, error) {
	report.Duration = time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("pipeline run aborted", "error", err, "duration", report.Duration)
	} else {
		span.SetStatus(codes.Ok, "")
		logger.Info("pipeline run finished",
			"succeeded", len(report.Results),
			"failed", len(report.Failures),
			"duration", report.Duration,
		)
	}

	span.SetAttributes(
		attribute.Int("run.succeeded", len(report.Results)),
		attribute.Int("run.failed", len(report.Failures)),
	)

	if e.metrics != nil {
		labels := map[string]string{"status": status}
		e.metrics.RecordLatency("pipeline_run", report.Duration, labels)
		e.metrics.RecordCounter("pipeline_runs_total", 1, labels)
		e.metrics.RecordGauge("pipeline_blocks_succeeded", float64(len(report.Results)), labels)
		e.metrics.RecordGauge("pipeline_blocks_failed", float64(len(report.Failures)), labels)
	}

	return report, err
}
