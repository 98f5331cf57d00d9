package logger

import (
	"fmt"
	"slices"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	formats = []string{"console", "pretty", "json"}
)

// Config is the logging section of the config file.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is "stderr" or "stdout".
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
	// ServiceName tags every entry. ServiceConfig fills it from name.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// ApplyDefaults selects info-level console output on stderr with
// timestamps.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate rejects unknown levels and formats.
func (c *Config) Validate() error {
	if !slices.Contains(levels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", levels, c.Level)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", formats, c.Format)
	}
	return nil
}
