package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/metrics"
	"github.com/edgetalker/smart-agents/model"
)

// Agent is the common surface of ToolAgent and ReActAgent.
type Agent interface {
	Name() string
	Run(ctx context.Context, input string) (string, error)
	History() []core.Message
	ClearHistory()
}

// BaseAgent bundles identity, the model, persistent history and the
// bookkeeping shared by both loop variants. Embed it in concrete agents.
type BaseAgent struct {
	name        string
	description string
	llm         model.Invoker
	history     *core.Transcript
	logger      *logging.AgentLogger
	opts        Options
}

func newBaseAgent(name string, llm model.Invoker, opts Options) BaseAgent {
	if opts.MaxIterations < 0 {
		opts.MaxIterations = 0
	}

	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		llm:         llm,
		history:     core.NewTranscript(),
		logger:      logging.NewAgentLogger(opts.Logger).WithComponent("agent").With("agent", name),
		opts:        opts,
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// MaxIterations returns the configured iteration cap.
func (b *BaseAgent) MaxIterations() int { return b.opts.MaxIterations }

// History returns a copy of the persistent conversation history.
func (b *BaseAgent) History() []core.Message { return b.history.Messages() }

// ClearHistory drops the persistent conversation history.
func (b *BaseAgent) ClearHistory() { b.history.Clear() }

func (b *BaseAgent) newRun(maxIterations int, seed ...core.Message) *run {
	state := core.NewRunState(maxIterations, seed...)

	r := &run{
		RunState: state,
		report:   &RunReport{RunID: state.RunID, Agent: b.name},
		log:      b.logger.WithRun(state.RunID),
		start:    time.Now(),
	}
	r.report.enter(StateInit)

	return r
}

// invoke performs one traced, measured model call.
func (b *BaseAgent) invoke(ctx context.Context, r *run, msgs []core.Message) (string, error) {
	r.report.enter(StateAwaitModel)
	r.report.ModelCalls++

	ctx, span := tracing.StartSpan(ctx, "model.invoke",
		attribute.String("agent.name", b.name),
		attribute.Int("agent.iteration", r.Iteration()),
		attribute.Int("model.messages", len(msgs)),
	)

	start := time.Now()
	out, err := b.llm.Invoke(ctx, msgs, b.opts.InvokeOptions)
	dur := time.Since(start)

	tracing.End(span, err)
	metrics.RecordModelInvocation(b.name, err, dur)
	r.log.LogModelCall(r.Iteration(), dur, err)

	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrModelInvocation, err)
	}

	return out, nil
}

// finish records the input and final answer in history and closes the report.
func (b *BaseAgent) finish(r *run, input, answer string, outcome Outcome) {
	b.history.Append(core.UserMessage(input), core.AssistantMessage(answer))
	b.close(r, outcome)
}

// abort closes the report without touching history.
func (b *BaseAgent) abort(r *run, err error) {
	r.log.Error("agent.run.error", "error", err.Error())
	b.close(r, OutcomeError)
}

func (b *BaseAgent) close(r *run, outcome Outcome) {
	r.report.Outcome = outcome
	r.report.Iterations = r.Iteration()
	r.report.Duration = time.Since(r.start)

	metrics.RecordRun(b.name, string(outcome), r.Iteration())
	r.log.LogRun(b.name, r.Iteration(), string(outcome), r.report.Duration)
}
