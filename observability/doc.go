// Package observability provides OpenTelemetry tracing and metrics integration
// for migration and fixture runs.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("fixturekit")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanFixtureLoad)
//	defer span.End()
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("fixturekit")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("fixturekit"))
//	metrics.RecordFixtureLoad(ctx, "shop", "eggs.yaml", 12, duration)
package observability
