package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline instruments. Methods on a nil *Metrics do
// nothing.
type Metrics struct {
	submissions metric.Int64Counter
	active      metric.Int64UpDownCounter
	failures    metric.Int64Counter
	recoveries  metric.Int64Counter
	phase       metric.Float64Histogram
	audioSize   metric.Int64Histogram
}

// NewMetrics creates the pipeline instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		errs []error
	)
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	m.submissions, err = meter.Int64Counter("voxnote.submissions",
		metric.WithDescription("Completed pipeline submissions by outcome"))
	collect(err)
	m.active, err = meter.Int64UpDownCounter("voxnote.submissions.active",
		metric.WithDescription("Submissions currently in flight"))
	collect(err)
	m.failures, err = meter.Int64Counter("voxnote.failures",
		metric.WithDescription("Pipeline failures by stage and error kind"))
	collect(err)
	m.recoveries, err = meter.Int64Counter("voxnote.recovery.saves",
		metric.WithDescription("Recovery writes by result"))
	collect(err)
	m.phase, err = meter.Float64Histogram("voxnote.phase.duration",
		metric.WithDescription("Duration of provider phases"), metric.WithUnit("s"))
	collect(err)
	m.audioSize, err = meter.Int64Histogram("voxnote.audio.size",
		metric.WithDescription("Size of submitted audio files"), metric.WithUnit("By"))
	collect(err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("metrics: %w", errors.Join(errs...))
	}
	return &m, nil
}

// RecordStart marks a submission as in flight.
func (m *Metrics) RecordStart(ctx context.Context) {
	if m != nil {
		m.active.Add(ctx, 1)
	}
}

// RecordEnd closes a submission opened by RecordStart. status is "ok" or
// "error".
func (m *Metrics) RecordEnd(ctx context.Context, status string, refined bool) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.Bool("refine", refined),
	))
}

func (m *Metrics) RecordAudioSize(ctx context.Context, size int64) {
	if m != nil {
		m.audioSize.Record(ctx, size)
	}
}

// RecordPhase records the duration of the transcription or refinement call.
func (m *Metrics) RecordPhase(ctx context.Context, phase, status string, d time.Duration) {
	if m != nil {
		m.phase.Record(ctx, d.Seconds(), metric.WithAttributes(
			attribute.String("phase", phase),
			attribute.String("status", status),
		))
	}
}

func (m *Metrics) RecordFailure(ctx context.Context, stage, kind string) {
	if m != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("kind", kind),
		))
	}
}

// RecordRecovery counts a recovery write. result is "saved" or "failed".
func (m *Metrics) RecordRecovery(ctx context.Context, result string) {
	if m != nil {
		m.recoveries.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
