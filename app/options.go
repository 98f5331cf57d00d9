package app

import (
	"time"

	"github.com/kbukum/voxnote/credential"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/pipeline"
)

// Option overrides a piece New would otherwise build from config.
type Option func(*options)

type options struct {
	log         *logger.Logger
	creds       credential.Provider
	transcriber pipeline.Transcriber
	grace       time.Duration
}

func resolveOptions(opts []Option) options {
	o := options{grace: 15 * time.Second}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// WithLogger skips building the logger from the logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCredentials replaces the provider built from the credentials section.
func WithCredentials(p credential.Provider) Option {
	return func(o *options) { o.creds = p }
}

// WithTranscriber replaces the configured transcription backend. Tests use
// it to avoid network calls.
func WithTranscriber(t pipeline.Transcriber) Option {
	return func(o *options) { o.transcriber = t }
}

// WithGracefulTimeout bounds the stop hooks and telemetry flush. The
// default is 15s.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.grace = d
		}
	}
}
