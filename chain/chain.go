// Package chain runs fixed pipelines of tool calls. Each step renders its
// input from a {key} template over the values produced so far, runs one tool
// and stores the output under its key. Execution is fail-fast: the first
// step that cannot render its input or whose tool fails ends the chain.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/internal/util"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/metrics"
	"github.com/edgetalker/smart-agents/tool"
)

// InputKey is the context key seeded with the chain input.
const InputKey = "input"

// ToolInvoker is the part of tool.Registry a chain depends on.
type ToolInvoker interface {
	Invoke(ctx context.Context, name, input string) tool.Result
}

// Step is one pipeline stage.
type Step struct {
	ToolName      string `json:"tool_name" yaml:"tool"`
	InputTemplate string `json:"input_template" yaml:"input"`
	OutputKey     string `json:"output_key" yaml:"output_key"`
}

// StepError reports which step aborted a chain. Its message is the text the
// chain returns; the cause is a *core.TemplateError, a *tool.ToolError or a
// template syntax error.
type StepError struct {
	Index int
	Tool  string
	Err   error
	text  string
}

func (e *StepError) Error() string { return e.text }

func (e *StepError) Unwrap() error { return e.Err }

// Chain is a named, ordered list of steps. Build it with AddStep before
// executing; a Chain is safe for concurrent Execute calls once built.
type Chain struct {
	Name        string
	Description string
	Steps       []Step

	logger *logging.AgentLogger
}

// New creates an empty chain.
func New(name, description string) *Chain {
	return &Chain{
		Name:        name,
		Description: description,
		logger:      logging.NewAgentLogger(nil).WithComponent("chain").With("chain", name),
	}
}

// SetLogger replaces the chain logger.
func (c *Chain) SetLogger(l logging.Logger) *Chain {
	c.logger = logging.NewAgentLogger(l).WithComponent("chain").With("chain", c.Name)
	return c
}

// AddStep appends a step. An empty outputKey defaults to step_<i>_result
// where i is the zero-based index of the new step.
func (c *Chain) AddStep(toolName, inputTemplate, outputKey string) *Chain {
	if outputKey == "" {
		outputKey = fmt.Sprintf("step_%d_result", len(c.Steps))
	}

	c.Steps = append(c.Steps, Step{ToolName: toolName, InputTemplate: inputTemplate, OutputKey: outputKey})
	c.log().Debug("chain.step.added", "tool", toolName, "output_key", outputKey)

	return c
}

// log never writes c.logger, so a Chain built as a struct literal can be
// executed concurrently.
func (c *Chain) log() *logging.AgentLogger {
	if c.logger == nil {
		return logging.NewAgentLogger(nil).WithComponent("chain").With("chain", c.Name)
	}

	return c.logger
}

// Execute runs the steps in order. vars seeds the template context (it is
// copied, never mutated) and input is stored under InputKey.
//
// On success the output of the last step is returned. On failure the
// returned text is the failing step's error message and err is non-nil:
// core.ErrEmptyChain for a chain without steps, otherwise a *StepError.
func (c *Chain) Execute(ctx context.Context, tools ToolInvoker, input string, vars map[string]string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "chain.execute",
		attribute.String("chain.name", c.Name),
		attribute.Int("chain.steps", len(c.Steps)),
	)

	out, err := c.execute(ctx, tools, input, vars)

	tracing.End(span, err)
	metrics.RecordChain(c.Name, err)

	return out, err
}

func (c *Chain) execute(ctx context.Context, tools ToolInvoker, input string, vars map[string]string) (string, error) {
	log := c.log()

	if len(c.Steps) == 0 {
		log.Warn("chain.execute.empty")
		return core.ErrEmptyChain.Error(), core.ErrEmptyChain
	}

	start := time.Now()
	log.Info("chain.execute.start", "steps", len(c.Steps))

	scope := make(map[string]string, len(vars)+len(c.Steps)+1)
	for k, v := range vars {
		scope[k] = v
	}

	scope[InputKey] = input
	final := input

	for i, step := range c.Steps {
		rendered, err := util.Interpolate(step.InputTemplate, scope)
		if err != nil {
			return c.fail(i, step, renderError(err))
		}

		res := tools.Invoke(ctx, step.ToolName, rendered)
		if !res.OK() {
			return c.fail(i, step, res.Err)
		}

		scope[step.OutputKey] = res.Output
		final = res.Output

		log.Debug("chain.step.complete", "step", i+1, "of", len(c.Steps), "tool", step.ToolName)
	}

	log.Info("chain.execute.complete", "steps", len(c.Steps), "duration_ms", time.Since(start).Milliseconds())

	return final, nil
}

func (c *Chain) fail(i int, step Step, cause error) (string, error) {
	se := &StepError{Index: i, Tool: step.ToolName, Err: cause}

	var (
		te  *core.TemplateError
		tle *tool.ToolError
	)

	switch {
	case errors.As(cause, &te):
		se.text = te.Error()
	case errors.As(cause, &tle):
		se.text = fmt.Sprintf("tool '%s' execution failed: %s", step.ToolName, tle.Message)
	default:
		se.text = cause.Error()
	}

	c.log().Error("chain.step.failed", "step", i+1, "tool", step.ToolName, "error", se.text)

	return se.text, se
}

func renderError(err error) error {
	var te *core.TemplateError
	if errors.As(err, &te) {
		return err
	}

	return fmt.Errorf("template interpolation failed: %w", err)
}
