package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/voxnote/logger"
)

// Environments accepted in ServiceConfig.Environment.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig is the top-level part of every voxnote config file. The
// application config embeds it with mapstructure squash:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Recovery RecoveryConfig `yaml:"recovery" mapstructure:"recovery"`
//	}
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	// Debug lowers the default log level to debug. An explicit
	// logging.level still wins.
	Debug   bool          `yaml:"debug" mapstructure:"debug"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills the environment and the logging section. Embedding
// configs call it before their own defaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the name, environment and logging section.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
