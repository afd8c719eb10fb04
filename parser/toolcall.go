// Package parser extracts structured tool-call requests from raw model text.
//
// Two independent grammars are supported, both pure functions without shared
// state:
//
//   - the inline bracket-tag grammar, [TOOL_CALL:<name>:<params>], which may
//     appear any number of times in a response (ParseToolCalls)
//   - the single-action "Thought / Action" step grammar used by ReAct style
//     loops (ParseStep)
//
// ParseParameters coerces raw call parameters into a key/value map.
package parser

import "strings"

// ToolCallPrefix opens a bracket-tag call.
const ToolCallPrefix = "[TOOL_CALL:"

// Call is a tool invocation extracted from model text.
type Call struct {
	// ToolName is the trimmed tool name.
	ToolName string
	// RawParameters is the trimmed parameter text.
	RawParameters string
	// SourceSpan is the exact substring that matched, including brackets.
	SourceSpan string
	// Offset is the byte offset of SourceSpan within the parsed text.
	Offset int
}

// End returns the byte offset just past the call's source span.
func (c Call) End() int { return c.Offset + len(c.SourceSpan) }

// ParseToolCalls returns every non-overlapping [TOOL_CALL:<name>:<params>]
// occurrence in text, left to right. The name runs to the first colon and may
// not contain a closing bracket, so "[TOOL_CALL:x] ... [TOOL_CALL:a:b]" yields
// only the second call instead of one call named "x] ... [TOOL_CALL"; the
// parameters run to the first closing bracket. Both must be non-empty. Text
// without matches yields nil.
func ParseToolCalls(text string) []Call {
	var calls []Call

	pos := 0
	for pos < len(text) {
		idx := strings.Index(text[pos:], ToolCallPrefix)
		if idx < 0 {
			break
		}

		start := pos + idx
		call, ok := scanToolCall(text, start)
		if !ok {
			// Not a well-formed call at this position; resume right after the
			// opening bracket so a later prefix can still match.
			pos = start + 1
			continue
		}

		calls = append(calls, call)
		pos = call.End()
	}

	return calls
}

// scanToolCall attempts to match a single call whose prefix starts at start.
func scanToolCall(text string, start int) (Call, bool) {
	nameStart := start + len(ToolCallPrefix)

	nameEnd := -1
	for i := nameStart; i < len(text); i++ {
		if text[i] == ':' {
			nameEnd = i
			break
		}

		if text[i] == ']' {
			return Call{}, false
		}
	}

	if nameEnd <= nameStart {
		return Call{}, false
	}

	paramStart := nameEnd + 1

	closeIdx := strings.IndexByte(text[paramStart:], ']')
	if closeIdx <= 0 {
		return Call{}, false
	}

	paramEnd := paramStart + closeIdx

	return Call{
		ToolName:      strings.TrimSpace(text[nameStart:nameEnd]),
		RawParameters: strings.TrimSpace(text[paramStart:paramEnd]),
		SourceSpan:    text[start : paramEnd+1],
		Offset:        start,
	}, true
}

// StripCalls removes each call's source span from text exactly once, at the
// position it was matched. calls must come from ParseToolCalls(text).
//
// Removal is a single pass: text built so that a span splits another tag, as
// in "[TOOL_CALL[TOOL_CALL:a:b]:c:d]", still contains a call afterwards.
func StripCalls(text string, calls []Call) string {
	if len(calls) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, c := range calls {
		if c.Offset < last || c.End() > len(text) || text[c.Offset:c.End()] != c.SourceSpan {
			continue
		}

		b.WriteString(text[last:c.Offset])
		last = c.End()
	}

	b.WriteString(text[last:])

	return b.String()
}

// HasToolCalls reports whether text contains at least one bracket-tag call.
func HasToolCalls(text string) bool {
	return len(ParseToolCalls(text)) > 0
}
