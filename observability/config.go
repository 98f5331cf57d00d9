package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/voxnote/logger"
)

// Config is the telemetry section of the application config.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	// Telemetry is disabled when empty.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `mapstructure:"insecure" json:"insecure"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval" json:"interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if c.Interval < 0 {
		return errors.New("telemetry.interval must not be negative")
	}
	return nil
}

// Enabled reports whether exporters should be created.
func (c *Config) Enabled() bool { return c.Endpoint != "" }

// Resource identifies the running service in exported telemetry.
type Resource struct {
	Name        string
	Version     string
	Environment string
}

// ShutdownFunc flushes and stops the providers created by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup initialises the tracer and meter providers when cfg has an endpoint.
// The returned ShutdownFunc is always non-nil.
func Setup(ctx context.Context, cfg Config, res Resource, log *logger.Logger) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if log == nil {
		log = logger.Nop()
	}
	if !cfg.Enabled() {
		log.Debug("telemetry disabled")
		return noop, nil
	}
	cfg.ApplyDefaults()

	r, err := newResource(res)
	if err != nil {
		return noop, fmt.Errorf("telemetry resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, cfg, r)
	if err != nil {
		return noop, err
	}
	mp, err := newMeterProvider(ctx, cfg, r)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}
	log.Info("telemetry enabled", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"interval", cfg.Interval.String(),
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
