package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("fixturectl")

	checks := []struct {
		field string
		got   interface{}
		want  interface{}
	}{
		{"ServiceName", cfg.ServiceName, "fixturectl"},
		{"ServiceVersion", cfg.ServiceVersion, "1.0.0"},
		{"Environment", cfg.Environment, "development"},
		{"Endpoint", cfg.Endpoint, "localhost:4318"},
		{"SampleRate", cfg.SampleRate, 1.0},
		{"Insecure", cfg.Insecure, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("fixturectl")

	if cfg.ServiceName != "fixturectl" {
		t.Errorf("ServiceName = %q, want fixturectl", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("Interval = %v, want 15s", cfg.Interval)
	}
	if !cfg.Insecure {
		t.Error("Insecure = false, want true for the default endpoint")
	}
}

// Every instrument records against the noop meter without error.
func TestMetricsRecorders(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "fixturekit", "migrate-up", "ok", 50*time.Millisecond)
	metrics.RecordMigration(ctx, "shop", "0002_eggs", "up", "ok", 120*time.Millisecond)
	metrics.RecordFixtureLoad(ctx, "shop", "eggs.yaml", 12, 30*time.Millisecond)
	metrics.RecordSequenceReset(ctx, "postgres", 2)
	metrics.RecordError(ctx, "validation", "fixture")
}

func TestNewOperationContext(t *testing.T) {
	oc := NewOperationContext("fixturekit", "fixture-load", nil)

	if oc.ServiceName != "fixturekit" {
		t.Errorf("ServiceName = %q", oc.ServiceName)
	}
	if oc.OperationName != "fixture-load" {
		t.Errorf("OperationName = %q", oc.OperationName)
	}
	if oc.RunID == "" {
		t.Error("RunID should be generated")
	}
	if oc.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}

	other := NewOperationContext("fixturekit", "fixture-load", nil)
	if other.RunID == oc.RunID {
		t.Errorf("run IDs should be distinct, both %q", oc.RunID)
	}
}

func TestOperationContextRoundTrip(t *testing.T) {
	oc := NewOperationContext("fixturekit", "fixture-load", nil)
	ctx := WithOperationContext(context.Background(), oc)

	got := OperationContextFromContext(ctx)
	if got == nil {
		t.Fatal("operation context lost in round trip")
	}
	if got.RunID != oc.RunID {
		t.Errorf("RunID = %q, want %q", got.RunID, oc.RunID)
	}

	if OperationContextFromContext(context.Background()) != nil {
		t.Error("bare context should carry no operation context")
	}
}

func TestOperationContextDuration(t *testing.T) {
	oc := NewOperationContext("fixturekit", "fixture-load", nil)
	oc.StartTime = time.Now().Add(-50 * time.Millisecond)

	d := oc.Duration()
	if d < 45*time.Millisecond || d > 200*time.Millisecond {
		t.Errorf("Duration = %v, want around 50ms", d)
	}
}

// An operation span completes whether or not metrics are attached and
// whether the outcome is success or failure.
func TestOperationSpanLifecycle(t *testing.T) {
	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))

	tests := []struct {
		name    string
		metrics *Metrics
		span    string
		status  string
		err     error
	}{
		{"no metrics", nil, SpanFixtureLoad, "ok", nil},
		{"with metrics", metrics, SpanMigrationApply, "ok", nil},
		{"failed operation", metrics, SpanMigrationApply, "error", fmt.Errorf("apply failed")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			oc := NewOperationContext("fixturekit", "migrate-up", tc.metrics)
			ctx, span := oc.StartSpanForOperation(context.Background(), tc.span)
			oc.EndOperation(ctx, span, tc.status, tc.err)
		})
	}
}

func TestTracerAndMeter(t *testing.T) {
	if Tracer("fixture") == nil {
		t.Fatal("Tracer returned nil")
	}
	if Meter("fixture") == nil {
		t.Fatal("Meter returned nil")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanSequenceReset)
	defer span.End()

	if span == nil || ctx == nil {
		t.Fatal("StartSpan returned nil")
	}
	if SpanFromContext(ctx) == nil {
		t.Fatal("span not reachable from context")
	}
}

func TestSpanFromContextWithoutSpan(t *testing.T) {
	// Background context yields the noop span, never nil.
	if SpanFromContext(context.Background()) == nil {
		t.Fatal("expected noop span")
	}
}

func TestSetSpanAttribute(t *testing.T) {
	// A recording SDK span, so IsRecording is true and attributes land.
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, span := StartSpan(context.Background(), SpanFixtureLoad)
	defer span.End()

	values := []struct {
		key   string
		value interface{}
	}{
		{AttrApp, "shop"},
		{AttrRecordCount, 12},
		{AttrDurationMs, int64(30)},
		{"sample.rate", 0.5},
		{"dry.run", true},
		{"files", []string{"eggs.yaml", "crates.yaml"}},
		{"unsupported", struct{}{}}, // silently ignored
	}
	for _, v := range values {
		SetSpanAttribute(ctx, v.key, v.value)
	}

	// No recording span: a no-op, not a panic.
	SetSpanAttribute(context.Background(), AttrApp, "shop")
}

func TestSetSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, span := StartSpan(context.Background(), SpanMigrationApply)
	defer span.End()

	SetSpanError(ctx, fmt.Errorf("fixture row missing"))
	SetSpanError(context.Background(), fmt.Errorf("no span attached"))
}

func TestSpanNameConstants(t *testing.T) {
	want := map[string]string{
		SpanMigrationApply:    "migration.apply",
		SpanMigrationRollback: "migration.rollback",
		SpanFixtureLoad:       "fixture.load",
		SpanFixtureUnload:     "fixture.unload",
		SpanSequenceReset:     "sequence.reset",
		SpanDBQuery:           "db.query",
	}
	for got, expect := range want {
		if got != expect {
			t.Errorf("span constant = %q, want %q", got, expect)
		}
	}
}

func TestAttributeKeyConstants(t *testing.T) {
	if AttrServiceName != "service.name" {
		t.Errorf("AttrServiceName = %q", AttrServiceName)
	}
	if AttrOperationName != "operation.name" {
		t.Errorf("AttrOperationName = %q", AttrOperationName)
	}
	if AttrRunID != "run.id" {
		t.Errorf("AttrRunID = %q", AttrRunID)
	}
}

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		insecure   bool
	}{
		{"always sample insecure", 1.0, true},
		{"never sample", 0.0, true},
		{"ratio sample", 0.5, true},
		{"secure endpoint", 1.0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &TracerConfig{
				ServiceName:    "fixturectl",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				Endpoint:       "localhost:4318",
				Insecure:       tc.insecure,
				SampleRate:     tc.sampleRate,
			}

			tp, err := InitTracer(context.Background(), cfg)
			if err != nil {
				// Resource merging can reject mismatched semconv schemas.
				t.Skipf("InitTracer: %v", err)
			}
			defer tp.Shutdown(context.Background())
		})
	}
}

func TestInitMeter(t *testing.T) {
	for _, tc := range []struct {
		name     string
		insecure bool
		interval time.Duration
	}{
		{"insecure with interval", true, 15 * time.Second},
		{"secure default interval", false, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &MeterConfig{
				ServiceName:    "fixturectl",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				Endpoint:       "localhost:4318",
				Insecure:       tc.insecure,
				Interval:       tc.interval,
			}

			mp, err := InitMeter(context.Background(), cfg)
			if err != nil {
				t.Skipf("InitMeter: %v", err)
			}
			defer mp.Shutdown(context.Background())
		})
	}
}
