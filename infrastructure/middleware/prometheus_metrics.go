package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

const metricsNamespace = "hv"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes per-block run latency and outcomes together with pipeline-level
// run counts and the size of the last run.
type PrometheusMetrics struct {
	blockDuration    *prometheus.HistogramVec
	blockRuns        *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	pipelineRuns     *prometheus.CounterVec
	pipelineBlocks   *prometheus.GaugeVec
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith registers the metrics with reg instead of the
// global registry.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Block metrics.
		blockDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "block_duration_seconds",
				Help:      "Duration of individual block runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"block", "status"},
		),
		blockRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "block_runs_total",
				Help:      "Total number of block runs by outcome.",
			},
			[]string{"block", "status"},
		),

		// Pipeline metrics.
		pipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of complete pipeline runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		pipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of pipeline runs by outcome.",
			},
			[]string{"status"},
		),
		pipelineBlocks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "pipeline_blocks",
				Help:      "Number of blocks that succeeded or failed in the last pipeline run.",
			},
			[]string{"outcome"},
		),

		// Fallbacks for metrics without a dedicated collector.
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of other engine operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of other engine operations.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "system_state",
				Help:      "Other engine state values.",
			},
			[]string{"metric"},
		),
	}
}

// label returns labels[key] or "unknown".
func label(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	switch operation {
	case MetricBlockRun:
		pm.blockDuration.WithLabelValues(label(labels, "block"), label(labels, "status")).
			Observe(duration.Seconds())
	case "pipeline_run":
		pm.pipelineDuration.WithLabelValues(label(labels, "status")).Observe(duration.Seconds())
	default:
		pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case MetricBlockRunsTotal:
		pm.blockRuns.WithLabelValues(label(labels, "block"), label(labels, "status")).Add(value)
	case "pipeline_runs_total":
		pm.pipelineRuns.WithLabelValues(label(labels, "status")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, label(labels, "status")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "pipeline_blocks_succeeded":
		pm.pipelineBlocks.WithLabelValues("succeeded").Set(value)
	case "pipeline_blocks_failed":
		pm.pipelineBlocks.WithLabelValues("failed").Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
