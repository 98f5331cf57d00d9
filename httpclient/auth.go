package httpclient

import (
	"net/http"
	"strings"
)

// AuthConfig carries the credential attached to a request. Both providers
// take an OpenAI-style bearer token; Header exists for gateways that want
// the key in a custom header instead.
type AuthConfig struct {
	Token string
	// Header replaces "Authorization: Bearer" with "<Header>: <Token>".
	Header string
}

// BearerAuth returns an "Authorization: Bearer <token>" credential.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Token: token}
}

// apply sets the credential header. A nil config or blank token sends
// nothing.
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || strings.TrimSpace(a.Token) == "" {
		return
	}
	if a.Header != "" {
		req.Header.Set(a.Header, a.Token)
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}
