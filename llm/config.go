package llm

import "time"

// DefaultTimeout bounds one completion request.
const DefaultTimeout = 120 * time.Second

// Config describes one LLM endpoint. Dialect picks the wire format.
type Config struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`

	// Temperature of nil leaves sampling to the provider.
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature"`
	// MaxTokens of 0 leaves the limit to the provider.
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CredentialName is reported in MissingCredential errors.
	CredentialName string            `yaml:"credential_name" mapstructure:"credential_name"`
	Headers        map[string]string `yaml:"headers" mapstructure:"headers"`
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Name == "" && c.Dialect != "" {
		c.Name = c.Dialect + "-llm"
	}
	if c.CredentialName == "" {
		c.CredentialName = "api key"
	}
}
