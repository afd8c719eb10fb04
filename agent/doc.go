// Package agent contains the reasoning loop: a bounded control loop that
// alternates model calls with tool execution until the model produces a
// final answer or the iteration budget runs out.
//
// Two agents share the same loop shape and differ in policy:
//
//  1. ToolAgent: turn-based tool calling. Every bracket-tag call found in a
//     response is executed, the results are folded back as a user turn, and
//     the loop repeats. On budget exhaustion one final unconstrained model
//     call produces the answer.
//  2. ReActAgent: one Thought/Action step per iteration against a rendered
//     prompt. Finish[...] ends the run; on budget exhaustion a fixed
//     FallbackAnswer is returned.
//
// Both agents append exactly two messages to their persistent history per
// successful run (the input and the final answer). Intermediate tool
// exchanges live in a per-run scratch transcript and are discarded.
//
// Model invocation errors abort the run and are returned wrapped with
// core.ErrModelInvocation; tool failures never abort, they are fed back to
// the model as text.
//
// An agent instance is not safe for concurrent Run calls: runs mutate the
// shared persistent history.
package agent
