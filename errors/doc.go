// Package errors provides the closed error taxonomy of the transcription
// pipeline. Every failure that crosses the pipeline boundary is an *AppError
// whose Code is one of the pipeline kinds, so callers can switch on KindOf
// exhaustively. HTTP status mapping and retryable detection ride along for
// the server front-end.
package errors
