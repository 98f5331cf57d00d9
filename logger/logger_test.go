package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "voxnote", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log output is not a single JSON line: %q (%v)", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").Info("hello", Fields("file", "a.m4a"))

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", m["message"])
	}
	if m["file"] != "a.m4a" {
		t.Errorf("expected file field, got %v", m["file"])
	}
	if m["service"] != "voxnote" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level fallback, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithComponent("recovery").Info("saved")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "recovery" {
		t.Errorf("expected component=recovery, got %v", m[FieldComponent])
	}
}

func TestWithContext_TraceAndRequestID(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = ContextWithRequestID(ctx, "req-1")

	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithContext(ctx).Info("traced")

	m := decodeLine(t, &buf)
	if m[FieldTraceID] != traceID.String() {
		t.Errorf("expected trace_id %s, got %v", traceID, m[FieldTraceID])
	}
	if m[FieldSpanID] != spanID.String() {
		t.Errorf("expected span_id %s, got %v", spanID, m[FieldSpanID])
	}
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", m[FieldRequestID])
	}
}

func TestWithContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithContext(context.Background()).Info("plain")

	m := decodeLine(t, &buf)
	if _, ok := m[FieldTraceID]; ok {
		t.Error("expected no trace_id without an active span")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{"phase": "refinement"}).
		WithError(fmt.Errorf("boom")).
		Error("failed")

	m := decodeLine(t, &buf)
	if m["phase"] != "refinement" {
		t.Errorf("expected phase field, got %v", m["phase"])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestNop(t *testing.T) {
	// Must not panic.
	Nop().WithComponent("x").Error("discarded")
}

func TestInitAndGlobal(t *testing.T) {
	Init(Config{Level: "info", Format: "console", ServiceName: "voxnote"})
	gl := GetGlobalLogger()
	if gl == nil || gl.service != "voxnote" {
		t.Fatalf("expected global logger for voxnote, got %+v", gl)
	}

	custom := Nop()
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected SetGlobalLogger to set the global logger")
	}

	global.Store(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "voxnote", &buf)
	l.Warn("careful")

	out := buf.String()
	if !strings.Contains(out, "[VOX][WRN]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "careful") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" || !cfg.Timestamp {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"pretty", Config{Level: "info", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(f) != 2 || f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected Fields result: %v", f)
	}

	ef := ErrorFields("save", fmt.Errorf("disk full"))
	if ef[FieldOperation] != "save" || ef[FieldError] != "disk full" {
		t.Errorf("unexpected ErrorFields result: %v", ef)
	}

	if ef := ErrorFields("noop", nil); len(ef) != 1 {
		t.Errorf("expected only the operation for a nil error, got %v", ef)
	}
}
