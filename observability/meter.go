package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/fixturekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds OpenTelemetry metric instruments for migration and
// fixture observability.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	migrationTotal    metric.Int64Counter
	migrationDuration metric.Float64Histogram
	fixtureObjects    metric.Int64Counter
	fixtureDuration   metric.Float64Histogram
	sequenceResets    metric.Int64Counter
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}

	migrationTotal, err := meter.Int64Counter("migration.total",
		metric.WithDescription("Total number of migrations applied or rolled back"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migration.total counter: %w", err)
	}

	migrationDuration, err := meter.Float64Histogram("migration.duration",
		metric.WithDescription("Duration of migrations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migration.duration histogram: %w", err)
	}

	fixtureObjects, err := meter.Int64Counter("fixture.objects.loaded",
		metric.WithDescription("Number of fixture objects written to the database"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fixture.objects.loaded counter: %w", err)
	}

	fixtureDuration, err := meter.Float64Histogram("fixture.load.duration",
		metric.WithDescription("Duration of fixture loads in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fixture.load.duration histogram: %w", err)
	}

	sequenceResets, err := meter.Int64Counter("sequence.reset.total",
		metric.WithDescription("Total number of sequence reset statements executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sequence.reset.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		migrationTotal:    migrationTotal,
		migrationDuration: migrationDuration,
		fixtureObjects:    fixtureObjects,
		fixtureDuration:   fixtureDuration,
		sequenceResets:    sequenceResets,
		errorTotal:        errorTotal,
	}, nil
}

// RecordOperation records an operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.operationTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordMigration records a migration apply or rollback.
func (m *Metrics) RecordMigration(ctx context.Context, app, migrationID, direction, status string, duration time.Duration) {
	m.migrationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("app", app),
		attribute.String("migration", migrationID),
		attribute.String("direction", direction),
		attribute.String("status", status),
	))
	m.migrationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("app", app),
		attribute.String("direction", direction),
	))
}

// RecordFixtureLoad records a completed fixture load.
func (m *Metrics) RecordFixtureLoad(ctx context.Context, app, fixture string, objects int64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("app", app),
		attribute.String("fixture", fixture),
	)
	m.fixtureObjects.Add(ctx, objects, attrs)
	m.fixtureDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSequenceReset records sequence reset statements executed for a dialect.
func (m *Metrics) RecordSequenceReset(ctx context.Context, dialect string, statements int64) {
	m.sequenceResets.Add(ctx, statements, metric.WithAttributes(
		attribute.String("dialect", dialect),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
