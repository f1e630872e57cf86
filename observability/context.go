package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OperationContext identifies one tracked run, a migration pass or a
// fixture load, across its spans and metrics. The RunID ties together
// everything a single invocation produced.
type OperationContext struct {
	ServiceName   string
	OperationName string
	RunID         string
	StartTime     time.Time
	Metrics       *Metrics
}

// NewOperationContext starts the clock on a run and assigns it a fresh
// RunID. A nil metrics handle turns metric recording into a no-op.
func NewOperationContext(serviceName, operationName string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		ServiceName:   serviceName,
		OperationName: operationName,
		RunID:         uuid.NewString(),
		StartTime:     time.Now(),
		Metrics:       metrics,
	}
}

type operationContextKey struct{}

// WithOperationContext stores oc in ctx so nested operations, like a
// deferred fixture load running inside a migration, report under the
// same run.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext returns the run stored in ctx, nil when
// the caller is not inside a tracked run.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	oc, _ := ctx.Value(operationContextKey{}).(*OperationContext)
	return oc
}

// StartSpanForOperation opens a span carrying the run's identity.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrServiceName, oc.ServiceName),
		attribute.String(AttrOperationName, oc.OperationName),
		attribute.String(AttrRunID, oc.RunID),
	)
	return ctx, span
}

// EndOperation closes the span with the run's outcome and records the
// operation metric, when metrics are wired.
func (oc *OperationContext) EndOperation(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(oc.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		oc.Metrics.RecordOperation(ctx, oc.ServiceName, oc.OperationName, status, duration)
	}
}

// Duration is the elapsed time since the run started.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
