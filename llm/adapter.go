package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/voxnote/credential"
	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/httpclient"
)

var ErrNoDialect = errors.New("llm: dialect is required")

// Adapter sends chat completions through a Dialect. One Execute is one HTTP
// exchange; failures are never retried.
type Adapter struct {
	http    *httpclient.Client
	dialect Dialect
	creds   credential.Provider
	cfg     Config
}

// New looks up cfg.Dialect in the registry and builds an adapter for it.
func New(cfg Config, creds credential.Provider) (*Adapter, error) {
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return NewWithDialect(d, cfg, creds)
}

// NewWithDialect builds an adapter around d without touching the registry.
func NewWithDialect(d Dialect, cfg Config, creds credential.Provider) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	if cfg.Name == "" {
		cfg.Name = d.Name() + "-llm"
	}
	cfg.applyDefaults()

	hc, err := httpclient.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("llm %s: %w", cfg.Name, err)
	}
	return &Adapter{http: hc, dialect: d, creds: creds, cfg: cfg}, nil
}

func (a *Adapter) Name() string { return a.http.Name() }

func (a *Adapter) Dialect() Dialect { return a.dialect }

// IsAvailable reports whether the credential resolves. No request is sent.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	_, err := credential.Resolve(ctx, a.creds, a.cfg.CredentialName)
	return err == nil
}

// Execute resolves the credential, then posts req to the dialect's chat
// path. Request fields left at zero, or nil, take the adapter defaults.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var none CompletionResponse

	token, err := credential.Resolve(ctx, a.creds, a.cfg.CredentialName)
	if err != nil {
		return none, err
	}
	if req.Model == "" {
		req.Model = a.cfg.Model
	}
	if req.Temperature == nil {
		req.Temperature = a.cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.cfg.MaxTokens
	}

	payload, err := a.dialect.BuildRequest(req)
	if err != nil {
		return none, apperrors.TransportFailure("llm: build request: "+err.Error(), false).WithCause(err)
	}
	resp, err := a.http.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    a.dialect.ChatPath(),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
		Auth:    httpclient.BearerAuth(token),
	})
	if err != nil {
		return none, httpclient.PipelineError(err)
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return none, apperrors.NoData("empty response body")
	}

	out, err := a.dialect.ParseResponse(resp.Body)
	switch {
	case err == nil:
		return *out, nil
	case apperrors.IsAppError(err):
		return none, err
	default:
		return none, apperrors.InvalidResponse(err.Error())
	}
}
