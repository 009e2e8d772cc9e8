package middleware

import (
	"context"
	"time"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// Metric names reported by MetricsMiddleware.
const (
	MetricBlockRun       = "block_run"
	MetricBlockRunsTotal = "block_runs_total"
)

// metricsBlock records latency and outcome of every Run call.
type metricsBlock struct {
	id        domain.BlockID
	next      ports.Block
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports each block run to
// collector, labelled by registry id and outcome status. A nil collector
// leaves blocks unwrapped.
func MetricsMiddleware(collector ports.MetricsCollector) ports.BlockMiddleware {
	return func(id domain.BlockID, next ports.Block) ports.Block {
		if collector == nil {
			return next
		}
		return &metricsBlock{id: id, next: next, collector: collector}
	}
}

// Spec returns the wrapped block's descriptor.
func (m *metricsBlock) Spec() domain.BlockSpec { return m.next.Spec() }

// Run executes the wrapped block and records its latency and status.
func (m *metricsBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	start := time.Now()
	outputs, err := m.next.Run(ctx, inputs)

	labels := map[string]string{
		"block":  string(m.id),
		"status": blockStatus(err),
	}
	m.collector.RecordLatency(MetricBlockRun, time.Since(start), labels)
	m.collector.RecordCounter(MetricBlockRunsTotal, 1, labels)

	return outputs, err
}
