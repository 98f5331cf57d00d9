package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog logger tagged with the service name. Derived loggers
// share the writer and add fields.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, outputWriter(cfg.Output))
}

// NewWithWriter builds a logger writing to w. An unknown level falls back
// to info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if isConsole(cfg.Format) {
		w = consoleWriter(w, service, cfg.NoColor)
	}
	zc := zerolog.New(w).Level(level).With()
	if !isConsole(cfg.Format) {
		zc = zc.Str("service", service)
	}
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger(), service: service}
}

// NewDefault returns an info-level console logger on stderr.
func NewDefault(service string) *Logger {
	cfg := Config{}
	cfg.ApplyDefaults()
	return New(&cfg, service)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{zl: zc.Logger(), service: l.service}
}

// WithContext adds the trace and span IDs of the active span and the
// request ID stored by ContextWithRequestID.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	return l.derive(zc)
}

// WithComponent tags every entry with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithFields adds fixed fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

// WithError adds an error field to every entry.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

type requestIDKey struct{}

// ContextWithRequestID stores the HTTP request ID for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stored request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var global atomic.Pointer[Logger]

// Init replaces the global logger with one built from cfg.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "default"
	}
	SetGlobalLogger(New(&cfg, name))
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the global logger, creating a default one on
// first use.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, NewDefault("default"))
	return global.Load()
}

func isConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	}
	return false
}

func outputWriter(output string) io.Writer {
	if strings.EqualFold(output, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

var levelTags = map[string]struct{ tag, color string }{
	"trace": {"TRC", ""},
	"debug": {"DBG", "\033[36m"},
	"info":  {"INF", "\033[32m"},
	"warn":  {"WRN", "\033[33m"},
	"error": {"ERR", "\033[31m"},
	"fatal": {"FTL", "\033[35m"},
}

// consoleWriter renders "[VOX][INF] message key:value" lines. The service
// tag is the first three letters of the service name.
func consoleWriter(w io.Writer, service string, noColor bool) io.Writer {
	paint := func(color, s string) string {
		if noColor || color == "" {
			return s
		}
		return color + s + "\033[0m"
	}
	svc := ""
	if len(service) >= 3 && service != "default" {
		svc = paint("\033[34m", "["+strings.ToUpper(service[:3])+"]")
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			lvl := fmt.Sprint(i)
			t, ok := levelTags[lvl]
			if !ok {
				t.tag = strings.ToUpper(lvl)
			}
			return svc + paint(t.color, "["+t.tag+"]")
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
	}
}
