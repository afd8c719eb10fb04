package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Tool-side failures never escape
// the registry as Go errors on the Execute path; they are exposed here so the
// explicit Invoke/Result path and the tool chain can classify them.
var (
	// ErrToolNotFound indicates a call referenced an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExecution indicates a tool implementation returned an error or panicked.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrModelInvocation indicates the model invoker failed. It aborts a run.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrIterationBudgetExceeded indicates a loop reached its iteration cap.
	ErrIterationBudgetExceeded = errors.New("iteration budget exceeded")

	// ErrEmptyChain indicates a tool chain without steps was executed.
	ErrEmptyChain = errors.New("tool chain is empty")
)

// TemplateError reports a placeholder that had no value in the render context.
type TemplateError struct {
	Key string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template interpolation failed: missing key '%s'", e.Key)
}
