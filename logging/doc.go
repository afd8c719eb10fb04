// Package logging provides a minimal logging interface and adapters.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that the registry, executor, chains and agents use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping go.uber.org/zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentLogger decorating any Logger with component / run context
//
// Usage:
//
//	logger := logging.New(logging.LogLevelInfo, "json")
//	registry := tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = logger })
//
// The interface is kept minimal to avoid vendor lock-in while supporting
// structured logging where available.
package logging
