package runner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexisbeaulieu97/citrine/internal/action"
)

// TracingListener opens one span per executed action. Nested actions become child spans
// because the span context travels with the context handed to the action.
type TracingListener struct {
	tracer trace.Tracer
}

// NewTracingListener creates a listener that starts spans on tracer.
func NewTracingListener(tracer trace.Tracer) *TracingListener {
	return &TracingListener{tracer: tracer}
}

// ActionStarted implements testcontext.ActionListener.
func (l *TracingListener) ActionStarted(ctx context.Context, name string) context.Context {
	ctx, _ = l.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("citrine.action", name),
		attribute.Int("citrine.depth", action.Depth(ctx)),
	))
	return ctx
}

// ActionFinished implements testcontext.ActionListener.
func (l *TracingListener) ActionFinished(ctx context.Context, _ string, err error, duration time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64("citrine.duration_ms", duration.Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
