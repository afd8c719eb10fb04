// Package core provides the foundational domain types shared by every other
// package:
//
//   - Message and Role (immutable conversational records)
//   - Transcript (ordered, append-only message log used for agent history
//     and per-run scratch state)
//   - IterationBudget and RunState (per-run bookkeeping)
//   - sentinel errors and TemplateError
//
// The package has no dependencies on models, tools or agents.
package core
