package server

import (
	"fmt"

	"github.com/kbukum/voxnote/server/middleware"
)

// MinWriteTimeout covers both phase timeouts plus upload time. A shorter
// write timeout would cut off responses for long recordings.
const MinWriteTimeout = 960

// Config holds HTTP server configuration.
type Config struct {
	Host            string                     `yaml:"host" mapstructure:"host" validate:"required"`
	Port            int                        `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     int                        `yaml:"read_timeout" mapstructure:"read_timeout"`         // seconds
	WriteTimeout    int                        `yaml:"write_timeout" mapstructure:"write_timeout"`       // seconds
	IdleTimeout     int                        `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // seconds
	ShutdownTimeout int                        `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	MaxBodySize     string                     `yaml:"max_body_size" mapstructure:"max_body_size"`       // e.g. "26MB"
	TempDir         string                     `yaml:"temp_dir" mapstructure:"temp_dir"`
	CORS            middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit       middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 120
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = MinWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "26MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	}
	if c.RateLimit.RequestsPerMinute > 0 && len(c.RateLimit.Paths) == 0 {
		c.RateLimit.Paths = []string{PathTranscriptions}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < MinWriteTimeout {
		return fmt.Errorf("server.write_timeout must be at least %d seconds (got: %d)", MinWriteTimeout, c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative (got: %d)", c.ShutdownTimeout)
	}
	if middleware.ParseSize(c.MaxBodySize, 0) == 0 {
		return fmt.Errorf("server.max_body_size is not a size (got: %q)", c.MaxBodySize)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("server.rate_limit.requests_per_minute must be non-negative (got: %d)", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
