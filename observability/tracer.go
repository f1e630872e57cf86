package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fixturekit/logger"
)

const defaultTracerName = "github.com/kbukum/fixturekit/observability"

// Span names emitted by the migration runner and the fixture loaders.
const (
	SpanMigrationApply    = "migration.apply"
	SpanMigrationRollback = "migration.rollback"
	SpanFixtureLoad       = "fixture.load"
	SpanFixtureUnload     = "fixture.unload"
	SpanSequenceReset     = "sequence.reset"
	SpanDBQuery           = "db.query"
)

// Attribute keys shared by spans and metrics.
const (
	AttrServiceName   = "service.name"
	AttrOperationName = "operation.name"
	AttrRunID         = "run.id"
	AttrApp           = "app.label"
	AttrModel         = "model.name"
	AttrFixture       = "fixture.name"
	AttrMigrationID   = "migration.id"
	AttrDialect       = "db.dialect"
	AttrRecordCount   = "record.count"
	AttrDurationMs    = "duration_ms"
	AttrStatus        = "status"
	AttrErrorMessage  = "error.message"
)

// TracerConfig configures OTLP HTTP trace export.
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	// Environment tags every span: development, staging, production.
	Environment string
	// Endpoint is the collector's host:port, e.g. "localhost:4318".
	Endpoint string
	// Insecure skips TLS, for local collectors.
	Insecure bool
	// SampleRate is the fraction of traces kept, 0.0 to 1.0.
	SampleRate float64
}

// DefaultTracerConfig targets a local collector and keeps every trace.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

func (c *TracerConfig) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRate >= 1.0:
		return sdktrace.AlwaysSample()
	case c.SampleRate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(c.SampleRate)
	}
}

// InitTracer installs a batching OTLP tracer provider as the global
// one. Shut the returned provider down on exit to flush spans.
func InitTracer(ctx context.Context, config *TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(config.sampler()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracer initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"sample_rate", config.SampleRate,
	))
	return tp, nil
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a span on the package tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(defaultTracerName).Start(ctx, name, opts...)
}

// SpanFromContext returns the span carried by ctx, a noop span when
// there is none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanAttribute attaches key=value to the recording span in ctx.
// Unsupported value types are dropped rather than stringified, so an
// attribute never silently changes type between recordings.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case []string:
		span.SetAttributes(attribute.StringSlice(key, v))
	}
}

// SetSpanError records err on the recording span in ctx.
func SetSpanError(ctx context.Context, err error) {
	if span := SpanFromContext(ctx); span != nil && span.IsRecording() {
		span.RecordError(err)
	}
}
