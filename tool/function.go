package tool

import (
	"context"

	"github.com/edgetalker/smart-agents/internal/util"
)

// Func is the signature of a plain text-in / text-out tool function.
type Func func(ctx context.Context, input string) (string, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
// The function receives the raw parameter text untouched.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use as long as the wrapped function is.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	upper := NewFunctionTool("upper", "Upper-case the input", func(_ context.Context, s string) (string, error) {
//	  return strings.ToUpper(s), nil
//	})
func NewFunctionTool(name, description string, fn Func) *FunctionTool {
	return &FunctionTool{name: name, description: description, fn: fn}
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns nil: function tools take free text.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Run invokes the wrapped function with the raw input text.
func (t *FunctionTool) Run(ctx context.Context, in Input) (string, error) {
	return t.fn(ctx, in.Text)
}

// Runner is implemented by object-style tools that consume coerced key/value
// arguments rather than raw text.
type Runner interface {
	Run(ctx context.Context, args map[string]string) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, args map[string]string) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, args map[string]string) (string, error) {
	return f(ctx, args)
}

// ObjectTool wraps a Runner together with its metadata and an optional
// parameter schema. Arguments are validated against the schema before the
// runner is called; a mismatch yields a *ToolError with CodeValidation.
type ObjectTool struct {
	name        string
	description string
	parameters  map[string]any
	runner      Runner
}

// NewObjectTool constructs an ObjectTool from an explicit schema (may be nil).
func NewObjectTool(name, description string, parameters map[string]any, runner Runner) *ObjectTool {
	return &ObjectTool{
		name:        name,
		description: description,
		parameters:  parameters,
		runner:      runner,
	}
}

// NewObjectToolFromStruct derives the parameter schema from a struct using
// reflection (see util.CreateSchema).
//
// Example:
//
//	type WeatherArgs struct {
//	  City string `json:"city" description:"City name"`
//	  Unit string `json:"unit,omitempty"`
//	}
//
//	weather := NewObjectToolFromStruct("weather", "Current weather", WeatherArgs{}, runner)
func NewObjectToolFromStruct(name, description string, structType any, runner Runner) *ObjectTool {
	return NewObjectTool(name, description, util.CreateSchema(structType), runner)
}

// Name returns the unique tool name.
func (t *ObjectTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *ObjectTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *ObjectTool) Parameters() map[string]any { return t.parameters }

// Run validates in.Args and forwards them to the runner.
func (t *ObjectTool) Run(ctx context.Context, in Input) (string, error) {
	if err := util.ValidateArgs(in.Args, t.parameters); err != nil {
		return "", &ToolError{
			Tool:    t.name,
			Message: "parameter validation failed: " + err.Error(),
			Code:    CodeValidation,
			Cause:   err,
		}
	}

	return t.runner.Run(ctx, in.Args)
}
