// Package server exposes the transcription pipeline over HTTP using Gin,
// served over HTTP/1.1 and h2c.
//
// # Routes
//
//   - POST /v1/transcriptions: multipart upload (audio, refine, prompt).
//     Responds with JSON, or with a text/event-stream of "status" events
//     followed by one "result" or "error" event.
//   - GET /v1/saved, GET /v1/saved/:name: recovery notes.
//   - GET /healthz: component health aggregation.
//   - GET /version: build version information.
//
// # Middleware
//
// The chain in server/middleware wraps the whole engine: panic recovery,
// request IDs, request logging, CORS, optional rate limiting and a body
// size limit.
package server
