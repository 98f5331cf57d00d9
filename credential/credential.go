// Package credential supplies API tokens to the provider clients.
//
// Clients resolve a token right before each request and fail with
// errors.ErrCodeMissingCredential when none is available, so an empty
// bearer token never reaches the network.
package credential

import (
	"context"
	"os"
	"strings"

	apperrors "github.com/kbukum/voxnote/errors"
)

// Provider returns the token to send with a request.
//
// Implementations:
//   - Env reads an environment variable on every call
//   - Static returns a fixed value (config files, tests)
//   - Chain tries several providers in order
//   - ProviderFunc adapts an ordinary function
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func(ctx context.Context) (string, error)

// Token implements Provider.
func (f ProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Env returns a provider reading the named environment variable.
func Env(name string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
		return "", apperrors.MissingCredential(name)
	})
}

// Static returns a provider for a fixed token. An empty token is reported as
// missing.
func Static(token string) Provider {
	token = strings.TrimSpace(token)
	return ProviderFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", apperrors.MissingCredential("static")
		}
		return token, nil
	})
}

// Chain returns the first token any provider yields. Providers reporting a
// missing credential are skipped; any other error stops the chain.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(ctx context.Context) (string, error) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			tok, err := p.Token(ctx)
			if err == nil && tok != "" {
				return tok, nil
			}
			if err != nil && !apperrors.IsKind(err, apperrors.ErrCodeMissingCredential) {
				return "", err
			}
		}
		return "", apperrors.MissingCredential("chain")
	})
}

// Resolve fetches a token from p, treating a nil provider or an empty token
// as a missing credential.
func Resolve(ctx context.Context, p Provider, name string) (string, error) {
	if p == nil {
		return "", apperrors.MissingCredential(name)
	}
	tok, err := p.Token(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tok) == "" {
		return "", apperrors.MissingCredential(name)
	}
	return tok, nil
}
