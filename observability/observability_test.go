package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/voxnote/logger"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Enabled() {
		t.Error("expected telemetry disabled without endpoint")
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{SampleRate: 0.5}, false},
		{"rate too high", Config{SampleRate: 1.5}, true},
		{"negative rate", Config{SampleRate: -0.1}, true},
		{"negative interval", Config{SampleRate: 1, Interval: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, Resource{Name: "voxnote"}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
}

func TestSetup_Enabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	shutdown, err := Setup(context.Background(), Config{Endpoint: "127.0.0.1:1", Insecure: true},
		Resource{Name: "voxnote", Version: "test", Environment: "test"}, logger.Nop())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// Export to the unreachable collector may fail; shutdown must still return.
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
	if sampler(0.5) == nil {
		t.Error("expected ratio sampler")
	}
}

func TestStartSpanAndSetSpanError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), SpanRefine)
	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != SpanRefine {
		t.Errorf("unexpected span name %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", ended[0].Status())
	}
	if len(ended[0].Events()) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(ended[0].Events()))
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordAudioSize(ctx, 1024)
	m.RecordPhase(ctx, "transcription", "ok", 2*time.Second)
	m.RecordFailure(ctx, "refinement", "TRANSPORT_FAILURE")
	m.RecordRecovery(ctx, "saved")
	m.RecordEnd(ctx, "error", true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	for _, want := range []string{
		"voxnote.submissions", "voxnote.submissions.active", "voxnote.failures",
		"voxnote.recovery.saves", "voxnote.phase.duration", "voxnote.audio.size",
	} {
		if !names[want] {
			t.Errorf("missing metric %s (have %v)", want, names)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	// Must not panic.
	m.RecordStart(ctx)
	m.RecordEnd(ctx, "ok", false)
	m.RecordAudioSize(ctx, 1)
	m.RecordPhase(ctx, "transcription", "ok", time.Second)
	m.RecordFailure(ctx, "validating", "FILE_TOO_LARGE")
	m.RecordRecovery(ctx, "failed")
}

func TestServiceHealth_AddComponent(t *testing.T) {
	sh := NewServiceHealth("voxnote", "1.0.0")

	sh.AddComponent(Health{Name: "storage", Status: HealthStatusUp})
	if sh.Status != HealthStatusUp {
		t.Errorf("expected status 'up' after healthy component, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "refinement", Status: HealthStatusDegraded, Message: "no credential"})
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected status 'degraded', got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "transcription", Status: HealthStatusDown})
	if sh.Status != HealthStatusDown {
		t.Errorf("expected status 'down', got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "late", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("expected 'down' not overridden by 'degraded', got %s", sh.Status)
	}
	if len(sh.Components) != 4 {
		t.Errorf("expected 4 components, got %d", len(sh.Components))
	}
}

func TestCheck(t *testing.T) {
	up := HealthCheckFunc(func(context.Context) Health {
		return Health{Name: "a", Status: HealthStatusUp}
	})
	down := HealthCheckFunc(func(context.Context) Health {
		return Health{Name: "b", Status: HealthStatusDown}
	})

	sh := Check(context.Background(), "voxnote", "v1", up, nil, down)
	if sh.Status != HealthStatusDown || len(sh.Components) != 2 {
		t.Fatalf("unexpected health %+v", sh)
	}
	if sh.Components[0].Name != "a" || sh.Components[1].Name != "b" {
		t.Errorf("expected components in argument order, got %+v", sh.Components)
	}
	if sh.Version != "v1" {
		t.Errorf("expected version v1, got %q", sh.Version)
	}
}
