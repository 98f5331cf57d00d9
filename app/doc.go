// Package app loads the voxnote configuration and wires the pipeline,
// recovery storage, provider clients, telemetry and HTTP server together.
//
// Lifecycle: New builds every service; RunTask runs a finite job (the CLI
// commands) and Serve runs the HTTP API until a shutdown signal. Both run
// OnStart hooks, a ready check over the health checkers and OnReady hooks
// first, and OnStop hooks plus a telemetry flush last.
package app
