package agent

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/internal/util"
	"github.com/edgetalker/smart-agents/model"
	"github.com/edgetalker/smart-agents/parser"
	"github.com/edgetalker/smart-agents/tool"
)

// FallbackAnswer is returned when a ReActAgent exhausts its step budget.
const FallbackAnswer = "Sorry, I could not complete this task within the step budget."

// DefaultReActPrompt is the built-in ReAct template.
const DefaultReActPrompt = `You are an AI assistant that can reason and act. Analyse the problem step by step, call the appropriate tools to gather information, and then give an accurate answer.

## Available tools
{tools}

## Workflow
Respond strictly in the following format, one step at a time:

Thought: analyse the current problem and decide what information or action is needed.
Action: choose one action, which must be one of:
- ` + "`{{tool_name}}[{{tool_input}}]`" + ` - call the named tool
- ` + "`Finish[final answer]`" + ` - when you have enough information to answer

## Rules
1. Every response must contain both a Thought and an Action.
2. Tool calls must follow the format tool_name[input] exactly.
3. Use Finish only when you are confident you can answer.
4. If a tool result is not enough, try another tool or the same tool with different input.

## Current task
**Question:** {question}

## History
{history}

Begin your reasoning and action now:
`

// ReActAgent runs the Thought/Action loop.
//
// Each step renders the prompt template with the tool catalogue, the
// question and the step history, sends it as a single user message, and
// parses one action. Finish[...] ends the run; a tool action executes one
// call whose Action/Observation pair joins the step history.
type ReActAgent struct {
	BaseAgent
	registry *tool.Registry
	template string
}

// NewReActAgent creates a ReAct agent. A nil registry behaves as an empty one.
//
// Defaults: DefaultMaxSteps steps and DefaultReActPrompt.
func NewReActAgent(name string, llm model.Invoker, registry *tool.Registry, optFns ...func(o *Options)) *ReActAgent {
	opts := Options{
		MaxIterations:  DefaultMaxSteps,
		PromptTemplate: DefaultReActPrompt,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.PromptTemplate == "" {
		opts.PromptTemplate = DefaultReActPrompt
	}

	if registry == nil {
		registry = tool.NewRegistry(func(o *tool.RegistryOptions) { o.Logger = opts.Logger })
	}

	return &ReActAgent{
		BaseAgent: newBaseAgent(name, llm, opts),
		registry:  registry,
		template:  opts.PromptTemplate,
	}
}

// Run answers input through Thought/Action steps.
func (a *ReActAgent) Run(ctx context.Context, input string) (string, error) {
	answer, _, err := a.RunWithReport(ctx, input)
	return answer, err
}

// RunWithReport is Run plus the run's report.
func (a *ReActAgent) RunWithReport(ctx context.Context, input string) (string, *RunReport, error) {
	r := a.newRun(a.opts.MaxIterations)

	ctx, span := tracing.StartSpan(ctx, "agent.run",
		attribute.String("agent.name", a.name),
		attribute.String("agent.kind", "react"),
		attribute.String("agent.run_id", r.RunID),
	)

	answer, exhausted, err := runLoop(ctx, r, func(ctx context.Context, r *run) (string, bool, error) {
		return a.step(ctx, r, input)
	})
	if err != nil {
		a.abort(r, err)
		tracing.End(span, err)

		return "", r.report, err
	}

	outcome := OutcomeDone
	if exhausted {
		answer = FallbackAnswer
		outcome = OutcomeBudgetExceeded
		r.report.enter(StateBudgetExceeded)
	}

	a.finish(r, input, answer, outcome)
	span.SetAttributes(attribute.String("agent.outcome", string(outcome)))
	tracing.End(span, nil)

	return answer, r.report, nil
}

// RenderPrompt renders the template for question and the given step history.
func (a *ReActAgent) RenderPrompt(question, history string) (string, error) {
	prompt, err := util.Interpolate(a.template, map[string]string{
		"tools":    a.registry.Describe(),
		"question": question,
		"history":  history,
	})
	if err != nil {
		return "", fmt.Errorf("render react prompt: %w", err)
	}

	return prompt, nil
}

func (a *ReActAgent) step(ctx context.Context, r *run, input string) (string, bool, error) {
	r.report.enter(StateBuildPrompt)

	prompt, err := a.RenderPrompt(input, stepHistory(r.Scratch))
	if err != nil {
		return "", false, err
	}

	resp, err := a.invoke(ctx, r, []core.Message{core.UserMessage(prompt)})
	if err != nil {
		return "", false, err
	}

	r.report.enter(StateParse)

	step := parser.ParseStep(resp)
	if step.Thought != "" {
		r.log.Debug("agent.step.thought", "iteration", r.Iteration(), "thought", step.Thought)
	}

	switch step.Kind {
	case parser.StepFinish:
		return step.Answer, true, nil
	case parser.StepTool:
		r.report.enter(StateDispatch)
		r.report.ToolCalls++

		observation := a.registry.Execute(ctx, step.ToolName, step.ToolInput)

		r.report.enter(StateAwaitResults)
		r.report.enter(StateFoldResults)
		r.Scratch.Append(
			core.AssistantMessage("Action: "+step.Action),
			core.NewMessage(core.RoleTool, "Observation: "+observation),
		)
	default:
		r.log.Debug("agent.step.no_action", "iteration", r.Iteration())
	}

	return "", false, nil
}

// stepHistory renders the scratch transcript as Action/Observation lines.
func stepHistory(t *core.Transcript) string {
	msgs := t.Messages()

	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Content()
	}

	return strings.Join(lines, "\n")
}
