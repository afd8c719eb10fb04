package core

import (
	"fmt"
	"sync"
)

// IterationBudget enforces the maximum number of loop iterations per run.
type IterationBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewIterationBudget creates a budget allowing max iterations.
// A non-positive max allows no iterations at all.
func NewIterationBudget(max int) *IterationBudget {
	if max < 0 {
		max = 0
	}

	return &IterationBudget{max: max}
}

// Next consumes one iteration and returns ErrIterationBudgetExceeded once the
// budget is spent.
func (b *IterationBudget) Next() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.max {
		return fmt.Errorf("%w: %d", ErrIterationBudgetExceeded, b.max)
	}

	b.count++

	return nil
}

// Count returns the number of consumed iterations.
func (b *IterationBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Max returns the configured cap.
func (b *IterationBudget) Max() int { return b.max }

// Remaining returns how many iterations are left.
func (b *IterationBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.max - b.count
}

// Exhausted reports whether no iterations are left.
func (b *IterationBudget) Exhausted() bool {
	return b.Remaining() <= 0
}
