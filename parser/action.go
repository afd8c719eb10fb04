package parser

import "strings"

// FinishAction is the sentinel action name that ends a ReAct loop.
const FinishAction = "Finish"

const (
	thoughtMarker = "Thought:"
	actionMarker  = "Action:"
)

// StepKind classifies a parsed ReAct step.
type StepKind int

const (
	// StepNone means no actionable call was recognized.
	StepNone StepKind = iota
	// StepFinish carries the final answer.
	StepFinish
	// StepTool carries a single tool invocation.
	StepTool
)

// String returns a readable name for the kind.
func (k StepKind) String() string {
	switch k {
	case StepFinish:
		return "finish"
	case StepTool:
		return "tool"
	default:
		return "none"
	}
}

// Step is one parsed "Thought / Action" model turn.
type Step struct {
	Kind    StepKind
	Thought string
	// Action is the raw action text (after "Action:"), empty when absent.
	Action string
	// ToolName and ToolInput are set for StepTool.
	ToolName  string
	ToolInput string
	// Answer is set for StepFinish.
	Answer string
}

// ParseStep extracts at most one action from a model turn. The first line
// starting with "Action:" wins. An action beginning with Finish yields
// StepFinish with the bracketed payload as answer; an action of the form
// <tool_name>[<tool_input>] yields StepTool. Anything else, including a
// missing Action line, yields StepNone.
func ParseStep(text string) Step {
	step := Step{Thought: extractThought(text)}

	action, ok := extractAction(text)
	if !ok {
		return step
	}

	step.Action = action

	if strings.HasPrefix(action, FinishAction) {
		step.Kind = StepFinish
		step.Answer = finishPayload(action)

		return step
	}

	name, input, ok := parseToolAction(action)
	if !ok {
		return step
	}

	step.Kind = StepTool
	step.ToolName = name
	step.ToolInput = input

	return step
}

// extractThought returns the text following "Thought:" up to the action line.
func extractThought(text string) string {
	idx := strings.Index(text, thoughtMarker)
	if idx < 0 {
		return ""
	}

	rest := text[idx+len(thoughtMarker):]
	if a := indexLinePrefix(rest, actionMarker); a >= 0 {
		rest = rest[:a]
	}

	return strings.TrimSpace(rest)
}

// extractAction returns the trimmed action text of the first "Action:" line.
// A bracket opened on that line but not closed there extends the action up to
// the last closing bracket in the remaining text, so multi-line payloads
// survive.
func extractAction(text string) (string, bool) {
	idx := indexLinePrefix(text, actionMarker)
	if idx < 0 {
		return "", false
	}

	rest := strings.TrimLeft(text[idx:], " \t")
	rest = rest[len(actionMarker):]

	line := rest
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		line = rest[:nl]
	}

	if open := strings.IndexByte(line, '['); open >= 0 && !strings.Contains(line[open:], "]") {
		if closeIdx := strings.LastIndexByte(rest, ']'); closeIdx > open {
			line = rest[:closeIdx+1]
		}
	}

	action := strings.Trim(strings.TrimSpace(line), "`")
	action = strings.TrimSpace(action)

	return action, action != ""
}

// indexLinePrefix finds the first line (ignoring leading blanks) starting
// with prefix and returns the byte offset of that line's start.
func indexLinePrefix(text, prefix string) int {
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')

		line := text[offset:]
		if end >= 0 {
			line = text[offset : offset+end]
		}

		if strings.HasPrefix(strings.TrimLeft(line, " \t"), prefix) {
			return offset
		}

		if end < 0 {
			break
		}

		offset += end + 1
	}

	return -1
}

// finishPayload returns the bracketed payload of a Finish action. A Finish
// without brackets yields its trimmed remainder.
func finishPayload(action string) string {
	rest := strings.TrimSpace(action[len(FinishAction):])

	if strings.HasPrefix(rest, "[") {
		if end := strings.LastIndexByte(rest, ']'); end > 0 {
			return strings.TrimSpace(rest[1:end])
		}

		return strings.TrimSpace(rest[1:])
	}

	return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
}

// parseToolAction matches <tool_name>[<tool_input>]. The name must be a
// non-empty identifier; the input runs to the last closing bracket, which
// must end the action.
func parseToolAction(action string) (string, string, bool) {
	open := strings.IndexByte(action, '[')
	if open <= 0 || !strings.HasSuffix(action, "]") {
		return "", "", false
	}

	name := strings.TrimSpace(action[:open])
	if !isIdentifier(name) {
		return "", "", false
	}

	return name, strings.TrimSpace(action[open+1 : len(action)-1]), true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}

	return true
}
