// Package openai implements transcription.Provider against an
// OpenAI-compatible /audio/transcriptions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbukum/voxnote/credential"
	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/httpclient"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/transcription"
)

const (
	// ProviderName is the name reported by the provider.
	ProviderName = "openai"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "whisper-1"
	DefaultTimeout = 600 * time.Second

	transcriptionsPath = "/audio/transcriptions"
)

// Config holds configuration for the transcription provider.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Prompt  string        `yaml:"prompt" mapstructure:"prompt"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// CredentialName labels the credential in MissingCredential errors.
	CredentialName string `yaml:"credential_name" mapstructure:"credential_name"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CredentialName == "" {
		c.CredentialName = "OPENAI_API_KEY"
	}
}

// Provider uploads audio with one bounded POST per call. It never retries.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	creds  credential.Provider
	log    *logger.Logger
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a provider. A malformed BaseURL is reported as
// InvalidEndpoint by Transcribe, not here.
func NewProvider(cfg Config, creds credential.Provider, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName + "-transcription",
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		cfg:    cfg,
		client: client,
		creds:  creds,
		log:    log.WithComponent("transcription"),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a credential can be resolved.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := credential.Resolve(ctx, p.creds, p.cfg.CredentialName)
	return err == nil
}

// Timeout returns the bound applied to each upload.
func (p *Provider) Timeout() time.Duration { return p.cfg.Timeout }

// Transcribe uploads req.Audio and returns the text field of the response.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	token, err := credential.Resolve(ctx, p.creds, p.cfg.CredentialName)
	if err != nil {
		return nil, err
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	prompt := p.cfg.Prompt
	if req.Prompt != "" {
		prompt = req.Prompt
	}

	body, contentType, err := transcription.EncodeUpload(model, prompt, req.Audio, req.FileName)
	if err != nil {
		return nil, apperrors.TransportFailure("encode upload: "+err.Error(), false).WithCause(err)
	}

	p.log.Debug("uploading audio", logger.Fields(
		logger.FieldFile, req.FileName,
		"bytes", len(req.Audio),
		"model", model,
	))

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    transcriptionsPath,
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
		Auth:    httpclient.BearerAuth(token),
	})
	if err != nil {
		return nil, httpclient.PipelineError(err)
	}

	text, err := decodeText(resp.Body)
	if err != nil {
		return nil, err
	}
	return &transcription.Response{Text: text}, nil
}

// decodeText extracts the "text" field from a 2xx response body.
func decodeText(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", apperrors.NoData("empty response body")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return "", apperrors.InvalidResponse("expected a JSON object")
	}

	raw, ok := obj["text"]
	if !ok {
		return "", apperrors.ParsingFailed("text")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", apperrors.ParsingFailed("text")
	}
	return text, nil
}
