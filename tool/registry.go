package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/metrics"
)

// NoToolsAvailable is returned by Describe when the registry is empty.
const NoToolsAvailable = "no tools available"

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Registry maps unique tool names to implementations.
//
// Registration is expected to finish before any reasoning run or executor
// batch starts; the RWMutex keeps concurrent misuse memory-safe but does not
// make mid-batch mutation meaningful.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger *logging.AgentLogger
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:  make(map[string]Tool),
		logger: logging.NewAgentLogger(opts.Logger).WithComponent("registry"),
	}
}

// Register upserts a tool. Overwriting an existing name keeps its original
// position in the registration order and is logged as a warning.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool.register.overwrite", "tool", name)
	} else {
		r.order = append(r.order, name)
	}

	r.tools[name] = t
	r.logger.Debug("tool.register", "tool", name)
}

// RegisterFunction registers fn as a FunctionTool.
func (r *Registry) RegisterFunction(name, description string, fn Func) {
	r.Register(NewFunctionTool(name, description, fn))
}

// Unregister removes a tool. Removing an unknown name is a logged no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		r.logger.Warn("tool.unregister.missing", "tool", name)
		return
	}

	delete(r.tools, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Debug("tool.unregister", "tool", name)
}

// Resolve returns the descriptor of the named tool.
func (r *Registry) Resolve(name string) (Descriptor, bool) {
	t, ok := r.Lookup(name)
	if !ok {
		return Descriptor{}, false
	}

	return Descriptor{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()}, true
}

// Lookup returns the named tool implementation.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// Invoke runs the named tool and returns an explicit Result. It never panics:
// an unknown name yields a CodeNotFound error, a failing or panicking tool a
// CodeExecution / CodePanic error.
func (r *Registry) Invoke(ctx context.Context, name, input string) Result {
	ctx, span := tracing.StartSpan(ctx, "tool.execute", attribute.String("tool.name", name))

	res := Result{Tool: name, Input: input}

	t, ok := r.Lookup(name)
	if !ok {
		res.Err = NewToolError(name, "not found", CodeNotFound)

		r.logger.Warn("tool.execute.not_found", "tool", name)
		metrics.RecordToolExecution(name, metrics.StatusNotFound, 0)
		tracing.End(span, res.Err)

		return res
	}

	start := time.Now()
	res.Output, res.Err = runContained(ctx, t, NewInput(name, input))
	res.Duration = time.Since(start)

	status := metrics.StatusSuccess
	if res.Err != nil {
		status = metrics.StatusError
	}

	r.logger.LogToolCall(name, res.Duration, res.Err)
	metrics.RecordToolExecution(name, status, res.Duration)
	tracing.End(span, res.Err)

	return res
}

// Execute is the total, text-only form of Invoke: it always returns text,
// either the tool output or a deterministic failure message.
func (r *Registry) Execute(ctx context.Context, name, input string) string {
	return r.Invoke(ctx, name, input).Text()
}

// runContained calls t.Run converting errors and panics into *ToolError.
func runContained(ctx context.Context, t Tool, in Input) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("panic: %v", rec),
				Code:    CodePanic,
				Cause:   fmt.Errorf("panic: %v\n%s", rec, debug.Stack()),
			}
		}
	}()

	out, err = t.Run(ctx, in)
	if err == nil {
		return out, nil
	}

	if te, ok := err.(*ToolError); ok {
		return "", te
	}

	return "", &ToolError{Tool: t.Name(), Message: err.Error(), Code: CodeExecution, Cause: err}
}

// Describe renders the "- name: description" bullet list in registration
// order, or NoToolsAvailable when empty.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return NoToolsAvailable
	}

	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, r.tools[name].Description()))
	}

	return strings.Join(lines, "\n")
}

// List returns tool names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Clear removes every tool.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools = make(map[string]Tool)
	r.order = nil
	r.logger.Info("tool.registry.cleared")
}
