// Package logging provides a tiny abstraction over structured loggers so the
// engine depends on a minimal interface (Logger) while callers plug in slog,
// zap or nothing at all. AgentLogger adds contextual cloning helpers (component,
// run) and domain helpers for tool calls, model calls and reasoning runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from any backend.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (any case) to
// a LogLevel. Unknown values fall back to LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface used across the engine.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// New builds a slog backed Logger writing to stderr in the given format
// ("json" or "text").
func New(level LogLevel, format string) Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level LogLevel, format string) Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return NewSlogAdapter(slog.New(handler))
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}

	return l
}

// AgentLogger decorates a Logger with a component name and run identifier
// attached to every entry, plus domain helpers. It is cheap to copy via the
// With* methods.
type AgentLogger struct {
	base      Logger
	component string
	runID     string
	attrs     []any
}

// NewAgentLogger wraps base (NoOp when nil).
func NewAgentLogger(base Logger) *AgentLogger {
	return &AgentLogger{base: OrNoOp(base)}
}

func (l *AgentLogger) clone() *AgentLogger {
	nl := *l
	nl.attrs = append([]any(nil), l.attrs...)

	return &nl
}

// WithComponent sets the logical component (registry, executor, agent, chain).
func (l *AgentLogger) WithComponent(c string) *AgentLogger {
	nl := l.clone()
	nl.component = c

	return nl
}

// WithRun attaches a run identifier.
func (l *AgentLogger) WithRun(runID string) *AgentLogger {
	nl := l.clone()
	nl.runID = runID

	return nl
}

// With adds a key/value attribute that will be attached to every log entry.
func (l *AgentLogger) With(key string, value any) *AgentLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, key, value)

	return nl
}

func (l *AgentLogger) decorate(args []any) []any {
	out := make([]any, 0, len(args)+len(l.attrs)+4)
	if l.component != "" {
		out = append(out, "component", l.component)
	}

	if l.runID != "" {
		out = append(out, "run_id", l.runID)
	}

	out = append(out, l.attrs...)

	return append(out, args...)
}

// Debug logs at debug level.
func (l *AgentLogger) Debug(msg string, args ...any) { l.base.Debug(msg, l.decorate(args)...) }

// Info logs at info level.
func (l *AgentLogger) Info(msg string, args ...any) { l.base.Info(msg, l.decorate(args)...) }

// Warn logs at warn level.
func (l *AgentLogger) Warn(msg string, args ...any) { l.base.Warn(msg, l.decorate(args)...) }

// Error logs at error level.
func (l *AgentLogger) Error(msg string, args ...any) { l.base.Error(msg, l.decorate(args)...) }

// LogToolCall records execution details for a tool invocation.
func (l *AgentLogger) LogToolCall(tool string, dur time.Duration, err error) {
	if err != nil {
		l.Error("tool.execute.error", "tool", tool, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}

	l.Info("tool.execute.success", "tool", tool, "duration_ms", dur.Milliseconds())
}

// LogModelCall records model call latency and outcome.
func (l *AgentLogger) LogModelCall(iteration int, dur time.Duration, err error) {
	if err != nil {
		l.Error("model.invoke.error", "iteration", iteration, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}

	l.Debug("model.invoke.success", "iteration", iteration, "duration_ms", dur.Milliseconds())
}

// LogRun records aggregate run metrics.
func (l *AgentLogger) LogRun(agent string, iterations int, outcome string, dur time.Duration) {
	l.Info("agent.run.complete",
		"agent", agent,
		"iterations", iterations,
		"outcome", outcome,
		"duration_ms", dur.Milliseconds(),
	)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *AgentLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("operation.complete", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
