package app

import (
	"fmt"

	"github.com/kbukum/voxnote/config"
	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/recovery"
	"github.com/kbukum/voxnote/refinement"
	"github.com/kbukum/voxnote/server"
	"github.com/kbukum/voxnote/storage"
	"github.com/kbukum/voxnote/transcription/openai"
	"github.com/kbukum/voxnote/validation"
	"github.com/kbukum/voxnote/version"
)

// ServiceName is the config and logging name of the application.
const ServiceName = "voxnote"

// EnvPrefix prefixes environment overrides, e.g. VOXNOTE_SERVER_PORT.
const EnvPrefix = "VOXNOTE"

// DefaultCredentialEnv is the variable holding the provider API key.
const DefaultCredentialEnv = "OPENAI_API_KEY"

// Config is the voxnote application configuration.
//
//	name: voxnote
//	transcription:
//	  model: whisper-1
//	refinement:
//	  model: gpt-4o-mini
//	recovery:
//	  provider: local
//	  base_path: ~/.voxnote
//	credentials:
//	  env: OPENAI_API_KEY
//	server:
//	  port: 8080
//	telemetry:
//	  endpoint: localhost:4318
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Transcription openai.Config        `yaml:"transcription" mapstructure:"transcription"`
	Refinement    refinement.Config    `yaml:"refinement" mapstructure:"refinement"`
	Recovery      RecoveryConfig       `yaml:"recovery" mapstructure:"recovery"`
	Credentials   CredentialsConfig    `yaml:"credentials" mapstructure:"credentials"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`

	// Workers bounds concurrent submissions for multi-file CLI runs.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=32"`
}

// RecoveryConfig selects where recovery notes are written.
type RecoveryConfig struct {
	storage.Config `yaml:",inline" mapstructure:",squash"`

	// Directory is the folder inside the storage root.
	Directory string `yaml:"directory" mapstructure:"directory"`
}

// CredentialsConfig says where the provider API key comes from. The
// environment variable wins over APIKey.
type CredentialsConfig struct {
	Env    string `yaml:"env" mapstructure:"env" validate:"required"`
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// ApplyDefaults fills every section. Both provider clients label missing
// credentials with the configured variable name.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Credentials.Env == "" {
		c.Credentials.Env = DefaultCredentialEnv
	}
	if c.Transcription.CredentialName == "" {
		c.Transcription.CredentialName = c.Credentials.Env
	}
	if c.Refinement.CredentialName == "" {
		c.Refinement.CredentialName = c.Credentials.Env
	}
	c.Transcription.ApplyDefaults()
	c.Refinement.ApplyDefaults()

	c.Recovery.Config.ApplyDefaults()
	if c.Recovery.Directory == "" {
		c.Recovery.Directory = recovery.DefaultDirectory
	}

	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults()

	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks every section after ApplyDefaults.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Recovery.Config.Validate(); err != nil {
		return fmt.Errorf("config.recovery: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// Load reads config.yml, .env and VOXNOTE_* variables, then applies
// defaults and validates.
func Load(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	opts = append([]config.LoaderOption{config.WithEnvPrefix(EnvPrefix)}, opts...)
	if err := config.LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
