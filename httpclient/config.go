package httpclient

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds an exchange when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config is the transport part of a provider section.
type Config struct {
	// Name labels the client in logs.
	Name    string        `yaml:"name" mapstructure:"name"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Auth is the default credential; Request.Auth overrides it.
	Auth    *AuthConfig       `yaml:"-" mapstructure:"-"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults sets the timeout when unset.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate rejects a non-positive timeout.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
