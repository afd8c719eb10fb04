package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/edgetalker/smart-agents/core"
)

// Options are per-call generation parameters. Nil / zero fields leave the
// provider default in place.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Float returns a pointer to v, for Options.Temperature.
func Float(v float64) *float64 { return &v }

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Invoker is the single capability the reasoning loop needs from a language
// model: take an ordered message list, return the completion text.
//
// Implementations must be safe for concurrent use when shared across agents.
type Invoker interface {
	Invoke(ctx context.Context, messages []core.Message, opts Options) (string, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, messages []core.Message, opts Options) (string, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, messages []core.Message, opts Options) (string, error) {
	return f(ctx, messages, opts)
}

// Call is one recorded MockInvoker invocation.
type Call struct {
	Messages []core.Message
	Options  Options
}

// LastContent returns the content of the final message of the call.
func (c Call) LastContent() string {
	if len(c.Messages) == 0 {
		return ""
	}

	return c.Messages[len(c.Messages)-1].Content()
}

type scripted struct {
	text string
	err  error
}

// MockInvoker is a lightweight in-memory Invoker useful for tests & examples.
//
// Scripted replies are consumed in order. Once the script is exhausted the
// mock falls back to a canned reply registered via AddResponse for the last
// message content, or "Mock response to: <content>".
type MockInvoker struct {
	info Info

	mu        sync.Mutex
	script    []scripted
	responses map[string]string
	calls     []Call
}

// NewMockInvoker constructs a MockInvoker that replies with responses in order.
func NewMockInvoker(responses ...string) *MockInvoker {
	m := &MockInvoker{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
	m.Queue(responses...)

	return m
}

// Queue appends scripted replies.
func (m *MockInvoker) Queue(responses ...string) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range responses {
		m.script = append(m.script, scripted{text: r})
	}

	return m
}

// QueueError appends a scripted failure.
func (m *MockInvoker) QueueError(err error) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		err = errors.New("mock invocation failed")
	}

	m.script = append(m.script, scripted{err: err})

	return m
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockInvoker) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[prompt] = response
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, messages []core.Message, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := Call{Messages: append([]core.Message(nil), messages...), Options: opts}
	m.calls = append(m.calls, call)

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]

		return next.text, next.err
	}

	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	last := call.LastContent()
	if r, ok := m.responses[last]; ok {
		return r, nil
	}

	return fmt.Sprintf("Mock response to: %s", last), nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockInvoker) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Call, len(m.calls))
	copy(out, m.calls)

	return out
}

// CallCount returns the number of recorded invocations.
func (m *MockInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

// Remaining returns the number of unconsumed scripted replies.
func (m *MockInvoker) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.script)
}

// Info returns mock metadata.
func (m *MockInvoker) Info() Info { return m.info }
