package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/time/rate"

	"github.com/softwarewrighter/hybrid-vid/infrastructure/adapters/publishing"
	"github.com/softwarewrighter/hybrid-vid/infrastructure/adapters/youtube"
	"github.com/softwarewrighter/hybrid-vid/infrastructure/middleware"
	"github.com/softwarewrighter/hybrid-vid/internal/application"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// EnvOptions configures the per-invocation environment.
type EnvOptions struct {
	// MaxRate caps block runs per second. 0 disables throttling.
	MaxRate float64
	// ChannelID is the upload destination for upload_video blocks.
	ChannelID string
}

// Env is everything a command needs to build and run pipelines: an engine
// with the standard middleware stack, the block type registry and a
// pipeline loader.
type Env struct {
	Engine   *application.Engine
	Registry *application.DefaultBlockRegistry
	Loader   *application.PipelineLoader
	Metrics  *middleware.PrometheusMetrics

	gatherer prometheus.Gatherer
}

// NewEnv builds an Env logging to logger.
func NewEnv(logger *slog.Logger, opts EnvOptions) (*Env, error) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewPrometheusMetricsWith(reg)

	mws := []ports.BlockMiddleware{
		middleware.LoggingMiddleware(logger),
		middleware.TracingMiddleware("hybrid-vid/blocks"),
		middleware.MetricsMiddleware(metrics),
	}
	if opts.MaxRate > 0 {
		mws = append(mws, middleware.RateLimitMiddleware(rate.Limit(opts.MaxRate), 1))
	}

	registry := application.NewDefaultBlockRegistry(
		youtube.NewClient(opts.ChannelID),
		publishing.NewPublisher(),
	)

	loader, err := application.NewPipelineLoader(registry)
	if err != nil {
		return nil, err
	}

	engine := application.NewEngine(
		application.WithLogger(logger),
		application.WithMetrics(metrics),
		application.WithBlockMiddleware(middleware.Chain(mws...)),
	)

	return &Env{
		Engine:   engine,
		Registry: registry,
		Loader:   loader,
		Metrics:  metrics,
		gatherer: reg,
	}, nil
}

// WriteMetrics writes the collected metrics in Prometheus text format.
func (e *Env) WriteMetrics(w io.Writer) error {
	families, err := e.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
