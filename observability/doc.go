// Package observability wires OpenTelemetry tracing and metrics for process
// launches.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("spawner"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanLaunch)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("spawner"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewSpawnMetrics(observability.Meter("spawner"))
//	metrics.RecordSpawn(ctx, observability.OutcomeOK, elapsed)
package observability
