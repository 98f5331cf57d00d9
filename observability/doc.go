// Package observability wires OpenTelemetry tracing and metrics for voxnote.
//
// Exporters are only created when an OTLP endpoint is configured; otherwise
// the global no-op providers stay in place and spans and instruments cost
// nothing.
//
//	shutdown, err := observability.Setup(ctx, cfg, observability.Resource{Name: "voxnote"}, log)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit)
//	defer span.End()
//
// Health:
//
//	health := observability.NewServiceHealth("voxnote", version.Get().Version)
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
