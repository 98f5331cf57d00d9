package transcription

import "context"

// Provider turns audio into text. Implementations make exactly one request
// per Transcribe call.
type Provider interface {
	Name() string
	// IsAvailable is a local check (credential present, config sane) and
	// never touches the network.
	IsAvailable(ctx context.Context) bool
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
