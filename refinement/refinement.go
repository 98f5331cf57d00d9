// Package refinement turns a raw transcript into cleaned-up text with a
// single chat completion.
package refinement

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/voxnote/credential"
	"github.com/kbukum/voxnote/llm"
	"github.com/kbukum/voxnote/llm/openai"
	"github.com/kbukum/voxnote/logger"
)

// DefaultPrompt is the system instruction used when the caller supplies none.
const DefaultPrompt = "Clean up this voice transcription: fix punctuation, remove filler words, " +
	"and organize it into clear paragraphs. Preserve the original meaning. Return only the cleaned text."

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 300 * time.Second
)

// Config configures the refinement client.
type Config struct {
	Dialect     string        `yaml:"dialect" mapstructure:"dialect"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature *float64      `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Prompt replaces DefaultPrompt as the fallback instruction.
	Prompt string `yaml:"prompt" mapstructure:"prompt"`
	// CredentialName labels the credential in MissingCredential errors.
	CredentialName string `yaml:"credential_name" mapstructure:"credential_name"`
}

// ApplyDefaults fills in zero-value fields. Temperature is defaulted only
// when unset, so an explicit 0 is kept.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = openai.DialectName
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == nil {
		c.Temperature = llm.Ptr(DefaultTemperature)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(c.Prompt) == "" {
		c.Prompt = DefaultPrompt
	}
	if c.CredentialName == "" {
		c.CredentialName = "OPENAI_API_KEY"
	}
}

// Refiner sends one two-turn completion per call: the instruction as the
// system message and the transcript as the user message.
type Refiner struct {
	completer llm.Completer
	prompt    string
	log       *logger.Logger
}

// New wraps an existing completer. An empty prompt selects DefaultPrompt.
func New(completer llm.Completer, prompt string, log *logger.Logger) *Refiner {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Refiner{completer: completer, prompt: prompt, log: log.WithComponent("refinement")}
}

// NewFromConfig builds the llm adapter described by cfg and wraps it.
func NewFromConfig(cfg Config, creds credential.Provider, log *logger.Logger) (*Refiner, error) {
	cfg.ApplyDefaults()
	adapter, err := llm.New(llm.Config{
		Name:           "refinement",
		Dialect:        cfg.Dialect,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		Timeout:        cfg.Timeout,
		CredentialName: cfg.CredentialName,
	}, creds)
	if err != nil {
		return nil, err
	}
	return New(adapter, cfg.Prompt, log), nil
}

// Refine returns the refined text. An empty instruction selects the
// configured prompt. Errors are pipeline errors from the llm adapter.
func (r *Refiner) Refine(ctx context.Context, instruction, text string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		instruction = r.prompt
	}
	r.log.Debug("refining transcript", logger.Fields("chars", len(text)))
	return llm.Complete(ctx, r.completer, instruction, text)
}
