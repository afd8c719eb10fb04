package agent

import (
	"context"

	"github.com/edgetalker/smart-agents/executor"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/model"
)

const (
	// DefaultMaxToolIterations is the ToolAgent iteration cap.
	DefaultMaxToolIterations = 3
	// DefaultMaxSteps is the ReActAgent step cap.
	DefaultMaxSteps = 5
	// DefaultSystemPrompt is used when no system prompt is configured.
	DefaultSystemPrompt = "You are a helpful assistant."
)

// BatchExecutor runs several tool calls at once, results in request order.
// *executor.Executor satisfies it.
type BatchExecutor interface {
	RunBatch(ctx context.Context, reqs []executor.Request) []executor.Result
}

// Options configures ToolAgent and ReActAgent.
//
// Use functional options with NewToolAgent / NewReActAgent to override
// defaults.
type Options struct {
	// SystemPrompt is the base system instruction (ToolAgent).
	SystemPrompt string

	// MaxIterations caps loop iterations; negative values are treated as 0.
	MaxIterations int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// InvokeOptions are passed to every model call.
	InvokeOptions model.Options

	// Executor, when set, dispatches multi-call ToolAgent turns as one
	// parallel batch. Results are still folded in appearance order.
	Executor BatchExecutor

	// EnableToolCalling toggles tool use for ToolAgent. It is forced off when
	// no registry is supplied.
	EnableToolCalling bool

	// PromptTemplate overrides the ReActAgent prompt. It may reference
	// {tools}, {question} and {history}; literal braces are written {{ }}.
	PromptTemplate string
}

// WithMaxIterations sets the maximum number of loop iterations.
//
// For ToolAgent this bounds tool rounds (the run makes at most n+1 model
// calls); for ReActAgent it bounds Thought/Action steps.
func WithMaxIterations(n int) func(o *Options) {
	return func(o *Options) { o.MaxIterations = n }
}

// WithSystemPrompt sets the base system prompt.
func WithSystemPrompt(prompt string) func(o *Options) {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithInvokeOptions sets sampling options for every model call.
func WithInvokeOptions(opts model.Options) func(o *Options) {
	return func(o *Options) { o.InvokeOptions = opts }
}

// WithExecutor enables parallel dispatch of multi-call turns.
func WithExecutor(e BatchExecutor) func(o *Options) {
	return func(o *Options) { o.Executor = e }
}

// WithToolCalling enables or disables tool use.
func WithToolCalling(enabled bool) func(o *Options) {
	return func(o *Options) { o.EnableToolCalling = enabled }
}

// WithPromptTemplate replaces the ReAct prompt template.
//
// Example:
//
//	agent.WithPromptTemplate("Tools:\n{tools}\n\nQ: {question}\n{history}\nUse {{tool}}[{{input}}] or Finish[answer].")
func WithPromptTemplate(tmpl string) func(o *Options) {
	return func(o *Options) { o.PromptTemplate = tmpl }
}
