package agent

import (
	"context"
	"time"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/logging"
)

// State is a reasoning loop state.
type State string

const (
	StateInit           State = "INIT"
	StateBuildPrompt    State = "BUILD_PROMPT"
	StateAwaitModel     State = "AWAIT_MODEL"
	StateParse          State = "PARSE"
	StateDispatch       State = "DISPATCH"
	StateAwaitResults   State = "AWAIT_RESULTS"
	StateFoldResults    State = "FOLD_RESULTS"
	StateDone           State = "DONE"
	StateBudgetExceeded State = "BUDGET_EXCEEDED"
)

// Outcome labels how a run ended.
type Outcome string

const (
	OutcomeDone           Outcome = "done"
	OutcomeBudgetExceeded Outcome = "budget_exceeded"
	OutcomeError          Outcome = "error"
)

// RunReport describes one completed (or aborted) run.
type RunReport struct {
	RunID      string
	Agent      string
	States     []State
	Iterations int
	ModelCalls int
	ToolCalls  int
	Outcome    Outcome
	Duration   time.Duration
}

func (r *RunReport) enter(s State) { r.States = append(r.States, s) }

// Final returns the last state entered.
func (r *RunReport) Final() State {
	if len(r.States) == 0 {
		return ""
	}

	return r.States[len(r.States)-1]
}

// run is the per-invocation scope: run state, report and a run-scoped logger.
type run struct {
	*core.RunState
	report *RunReport
	log    *logging.AgentLogger
	start  time.Time
}

// stepFunc performs one loop iteration. done=true ends the loop with answer.
type stepFunc func(ctx context.Context, r *run) (answer string, done bool, err error)

// runLoop drives step until it reports done, fails, or the iteration budget
// is spent. exhausted=true means the budget ran out without a final answer;
// the caller applies its own exhaustion policy.
func runLoop(ctx context.Context, r *run, step stepFunc) (answer string, exhausted bool, err error) {
	for r.Budget.Next() == nil {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		r.report.Iterations = r.Iteration()
		r.log.Debug("agent.iteration.start", "iteration", r.Iteration(), "max_iterations", r.MaxIterations())

		answer, done, err := step(ctx, r)
		if err != nil {
			return "", false, err
		}

		if done {
			r.report.enter(StateDone)
			return answer, false, nil
		}
	}

	r.log.Warn("agent.iteration.budget_exceeded", "max_iterations", r.MaxIterations())

	return "", true, nil
}
