package core

import "github.com/google/uuid"

// RunState is the mutable bookkeeping of a single reasoning run. It is
// created when a run starts, mutated only by the loop driving that run and
// dropped when the run returns. It is never shared across runs.
type RunState struct {
	RunID   string
	Budget  *IterationBudget
	Scratch *Transcript
}

// NewRunState creates a fresh run state with an empty scratch transcript.
func NewRunState(maxIterations int, seed ...Message) *RunState {
	return &RunState{
		RunID:   uuid.NewString(),
		Budget:  NewIterationBudget(maxIterations),
		Scratch: NewTranscript(seed...),
	}
}

// Iteration returns the number of iterations consumed so far.
func (s *RunState) Iteration() int { return s.Budget.Count() }

// MaxIterations returns the iteration cap for this run.
func (s *RunState) MaxIterations() int { return s.Budget.Max() }
