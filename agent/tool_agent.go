package agent

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/executor"
	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/model"
	"github.com/edgetalker/smart-agents/parser"
	"github.com/edgetalker/smart-agents/tool"
)

const toolsSectionFormat = `

## Available tools
You can use the following tools to help answer the question:
%s

## Tool call format
When you need a tool, write the call exactly like this:
` + "`[TOOL_CALL:{tool_name}:{parameters}]`" + `
For example: ` + "`[TOOL_CALL:search:Go concurrency]`" + ` or ` + "`[TOOL_CALL:memory:action=search,query=user preferences]`" + `

Tool results are inserted into the conversation automatically; continue your answer based on them.
`

// FormatToolResults renders the synthetic user turn that folds one round of
// tool outputs back into the conversation.
func FormatToolResults(results []string) string {
	return "Tool execution results:\n" + strings.Join(results, "\n\n") +
		"\n\nPlease give a complete answer based on these results."
}

// ToolAgent runs the turn-based tool calling loop.
//
// Each iteration sends the accumulated messages to the model. A response
// without [TOOL_CALL:...] tags is the final answer. Otherwise every call is
// executed in appearance order, the tag-free response and a results turn are
// appended, and the loop repeats. When the iteration budget is spent the
// agent makes one last model call without parsing and returns its text.
type ToolAgent struct {
	BaseAgent
	registry    *tool.Registry
	executor    BatchExecutor
	toolCalling bool
}

// NewToolAgent creates a tool-calling agent.
//
// Defaults:
//   - DefaultMaxToolIterations tool rounds
//   - DefaultSystemPrompt
//   - tool calling enabled when registry is non-nil
//   - sequential dispatch through the registry
func NewToolAgent(name string, llm model.Invoker, registry *tool.Registry, optFns ...func(o *Options)) *ToolAgent {
	opts := Options{
		MaxIterations:     DefaultMaxToolIterations,
		EnableToolCalling: true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ToolAgent{
		BaseAgent:   newBaseAgent(name, llm, opts),
		registry:    registry,
		executor:    opts.Executor,
		toolCalling: opts.EnableToolCalling && registry != nil,
	}
}

// ToolCallingEnabled reports whether responses are scanned for tool calls.
func (a *ToolAgent) ToolCallingEnabled() bool { return a.toolCalling }

// SystemPrompt returns the effective system prompt: the base prompt plus the
// tool catalogue and call format when tools are available.
func (a *ToolAgent) SystemPrompt() string {
	base := a.opts.SystemPrompt
	if base == "" {
		base = DefaultSystemPrompt
	}

	if !a.toolCalling {
		return base
	}

	desc := a.registry.Describe()
	if desc == "" || desc == tool.NoToolsAvailable {
		return base
	}

	return base + fmt.Sprintf(toolsSectionFormat, desc)
}

// Run answers input, using tools as the model requests them.
func (a *ToolAgent) Run(ctx context.Context, input string) (string, error) {
	answer, _, err := a.RunWithReport(ctx, input)
	return answer, err
}

// RunWithReport is Run plus the run's report.
func (a *ToolAgent) RunWithReport(ctx context.Context, input string) (string, *RunReport, error) {
	seed := make([]core.Message, 0, a.history.Len()+2)
	seed = append(seed, core.SystemMessage(a.SystemPrompt()))
	seed = append(seed, a.history.Messages()...)
	seed = append(seed, core.UserMessage(input))

	r := a.newRun(a.opts.MaxIterations, seed...)

	ctx, span := tracing.StartSpan(ctx, "agent.run",
		attribute.String("agent.name", a.name),
		attribute.String("agent.kind", "tool"),
		attribute.String("agent.run_id", r.RunID),
	)

	answer, outcome, err := a.run(ctx, r)
	if err != nil {
		a.abort(r, err)
		tracing.End(span, err)

		return "", r.report, err
	}

	a.finish(r, input, answer, outcome)
	span.SetAttributes(attribute.String("agent.outcome", string(outcome)))
	tracing.End(span, nil)

	return answer, r.report, nil
}

func (a *ToolAgent) run(ctx context.Context, r *run) (string, Outcome, error) {
	if !a.toolCalling {
		r.report.enter(StateBuildPrompt)

		answer, err := a.invoke(ctx, r, r.Scratch.Messages())
		if err != nil {
			return "", OutcomeError, err
		}

		r.report.enter(StateDone)

		return answer, OutcomeDone, nil
	}

	answer, exhausted, err := runLoop(ctx, r, a.step)
	if err != nil {
		return "", OutcomeError, err
	}

	if !exhausted {
		return answer, OutcomeDone, nil
	}

	// Budget spent with calls still pending: one final call, tags ignored.
	r.report.enter(StateBuildPrompt)

	answer, err = a.invoke(ctx, r, r.Scratch.Messages())
	if err != nil {
		return "", OutcomeError, err
	}

	r.report.enter(StateBudgetExceeded)

	return answer, OutcomeBudgetExceeded, nil
}

func (a *ToolAgent) step(ctx context.Context, r *run) (string, bool, error) {
	r.report.enter(StateBuildPrompt)

	resp, err := a.invoke(ctx, r, r.Scratch.Messages())
	if err != nil {
		return "", false, err
	}

	r.report.enter(StateParse)

	calls := parser.ParseToolCalls(resp)
	if len(calls) == 0 {
		return resp, true, nil
	}

	r.log.Debug("agent.tool_calls.parsed", "iteration", r.Iteration(), "count", len(calls))

	r.report.enter(StateDispatch)
	results := a.dispatch(ctx, r, calls)
	r.report.enter(StateAwaitResults)

	r.report.enter(StateFoldResults)
	r.Scratch.Append(
		core.AssistantMessage(strings.TrimSpace(parser.StripCalls(resp, calls))),
		core.UserMessage(FormatToolResults(results)),
	)

	return "", false, nil
}

// dispatch executes calls and returns their textual outcomes in appearance
// order.
func (a *ToolAgent) dispatch(ctx context.Context, r *run, calls []parser.Call) []string {
	r.report.ToolCalls += len(calls)
	out := make([]string, len(calls))

	if a.executor != nil && len(calls) > 1 {
		reqs := make([]executor.Request, len(calls))
		for i, c := range calls {
			reqs[i] = executor.Request{ToolName: c.ToolName, Input: c.RawParameters}
		}

		for i, res := range a.executor.RunBatch(ctx, reqs) {
			if i < len(out) {
				out[i] = res.Output
			}
		}

		return out
	}

	for i, c := range calls {
		out[i] = a.registry.Execute(ctx, c.ToolName, c.RawParameters)
	}

	return out
}
