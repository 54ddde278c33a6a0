// Package logging provides a minimal logging interface and adapters for MindMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runtime and agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping go.uber.org/zap (used by the CLI)
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - MindMeshLogger, a richer slog-based logger with contextual helpers
//     (component, agent) and domain helpers for pipeline and state events
//
// Usage:
//
//	logger := logging.NewLogger(nil)
//	rt := runtime.New(bus, func(o *runtime.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
