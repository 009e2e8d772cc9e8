package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
	"github.com/softwarewrighter/hybrid-vid/internal/ports"
)

// tracedBlock wraps each Run call in an OpenTelemetry span.
type tracedBlock struct {
	id     domain.BlockID
	next   ports.Block
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that records a "block.run" span per
// invocation using the tracer named serviceName.
func TracingMiddleware(serviceName string) ports.BlockMiddleware {
	return TracingMiddlewareWithTracer(otel.Tracer(serviceName))
}

// TracingMiddlewareWithTracer is TracingMiddleware with an explicit tracer.
func TracingMiddlewareWithTracer(tracer trace.Tracer) ports.BlockMiddleware {
	return func(id domain.BlockID, next ports.Block) ports.Block {
		return &tracedBlock{id: id, next: next, tracer: tracer}
	}
}

// Spec returns the wrapped block's descriptor.
func (t *tracedBlock) Spec() domain.BlockSpec { return t.next.Spec() }

// Run executes the wrapped block within a span.
func (t *tracedBlock) Run(ctx context.Context, inputs domain.Artifacts) (domain.Artifacts, error) {
	ctx, span := t.tracer.Start(ctx, "block.run",
		trace.WithAttributes(
			attribute.String("block.id", string(t.id)),
			attribute.String("block.type", string(t.next.Spec().ID)),
			attribute.Int("block.inputs", len(inputs)),
		),
	)
	defer span.End()

	outputs, err := t.next.Run(ctx, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("block.status", blockStatus(err)))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("block.outputs", len(outputs)),
		attribute.String("block.status", "success"),
	)
	return outputs, nil
}
