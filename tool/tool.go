// Package tool implements the capability subsystem: the Tool interface that
// every external capability satisfies, two concrete adapters (FunctionTool
// for plain functions, ObjectTool for argument-map objects) and the Registry
// that resolves names to implementations and executes them without ever
// letting a tool failure escape as a Go error or panic.
package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/internal/util"
	"github.com/edgetalker/smart-agents/parser"
)

// Tool defines the interface for extending agents with external capabilities.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Return a descriptive error instead of panicking
//   - Be safe for concurrent use, since the parallel executor may run the
//     same tool from several goroutines
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is shown to the model in the "available tools" prompt section.
	Description() string

	// Parameters returns an optional JSON-schema-like description of the
	// accepted arguments. Nil means free text.
	Parameters() map[string]any

	// Run executes the tool.
	Run(ctx context.Context, in Input) (string, error)
}

// Input is what a tool receives: the raw parameter text as the model wrote it
// and the coerced key/value view of it.
type Input struct {
	Text string
	Args map[string]string
}

// NewInput builds an Input for the named tool, coercing text with
// parser.ParseParameters.
func NewInput(toolName, text string) Input {
	return Input{Text: text, Args: parser.ParseParameters(toolName, text)}
}

// Arg returns the named argument or def when absent.
func (in Input) Arg(key, def string) string {
	if v, ok := in.Args[key]; ok {
		return v
	}

	return def
}

// Descriptor is the registry's public view of a tool.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ValidationError represents argument validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeExecution  = "EXECUTION_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodePanic      = "PANIC"
)

// ToolError represents a failure to resolve or execute a tool. Its message is
// the deterministic in-band text fed back to the model.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
	Cause   error  `json:"-"`
}

func (e *ToolError) Error() string {
	if e.Code == CodeNotFound {
		return fmt.Sprintf("tool '%s' not found", e.Tool)
	}

	return fmt.Sprintf("tool execution failed: %s", e.Message)
}

// Unwrap exposes the core sentinel matching the error code, so callers can
// use errors.Is(err, core.ErrToolNotFound) / core.ErrToolExecution.
func (e *ToolError) Unwrap() []error {
	sentinel := core.ErrToolExecution
	if e.Code == CodeNotFound {
		sentinel = core.ErrToolNotFound
	}

	if e.Cause != nil {
		return []error{sentinel, e.Cause}
	}

	return []error{sentinel}
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Result is the explicit outcome of one tool invocation: either Output or Err.
type Result struct {
	Tool     string
	Input    string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Text renders the result as the in-band text fed back to the model.
func (r Result) Text() string {
	if r.Err == nil {
		return r.Output
	}

	var te *ToolError
	if errors.As(r.Err, &te) {
		return te.Error()
	}

	return fmt.Sprintf("tool execution failed: %v", r.Err)
}
