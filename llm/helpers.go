package llm

import (
	"context"
)

// Completer is the request/response contract Complete works against. The
// Adapter implements it; tests and decorators can substitute their own.
type Completer interface {
	Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

var _ Completer = (*Adapter)(nil)

// Ptr returns a pointer to v, for optional request and config fields such as
// Temperature.
func Ptr[T any](v T) *T { return &v }

// Complete is a convenience helper: sends a two-turn system + user exchange
// and returns the text response.
func Complete(ctx context.Context, c Completer, system, user string) (string, error) {
	resp, err := c.Execute(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
