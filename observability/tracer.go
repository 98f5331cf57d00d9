package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the voxnote tracer and meter.
const InstrumentationName = "github.com/kbukum/voxnote"

// Span names.
const (
	SpanSubmit     = "voxnote.submit"
	SpanTranscribe = "voxnote.transcribe"
	SpanRefine     = "voxnote.refine"
	SpanRecover    = "voxnote.recover"
)

// Attribute keys.
const (
	AttrFile         = "voxnote.file"
	AttrSizeBytes    = "voxnote.size_bytes"
	AttrRefine       = "voxnote.refine"
	AttrProvider     = "voxnote.provider"
	AttrErrorKind    = "voxnote.error_kind"
	AttrRecoveryPath = "voxnote.recovery_location"
	AttrStatus       = "status"
	AttrDurationMs   = "duration_ms"
	AttrRequestID    = "request.id"
)

// newTracerProvider exports spans over OTLP/HTTP and installs the provider
// and the W3C propagators globally.
func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// newResource merges the service identity into the SDK default resource.
// The attributes are schemaless so the merge never conflicts on semconv
// versions.
func newResource(r Resource) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(r.Name),
		semconv.ServiceVersion(r.Version),
		attribute.String("environment", r.Environment),
	))
}

// StartSpan starts a span on the voxnote tracer of the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, name, opts...)
}

// SetSpanError records err on span and marks it failed. A nil err is a
// no-op.
func SetSpanError(span trace.Span, err error) {
	if err == nil || span == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
