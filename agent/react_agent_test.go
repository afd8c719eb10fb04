package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/model"
)

func TestReActAgent_FinishWithoutTools(t *testing.T) {
	var searches int32

	llm := model.NewMockInvoker("Thought: I know this.\nAction: Finish[42]")
	a := NewReActAgent("react", llm, newSearchRegistry(&searches))

	answer, report, err := a.RunWithReport(context.Background(), "What is 6*7?")
	require.NoError(t, err)

	assert.Equal(t, "42", answer)
	assert.Equal(t, int32(0), searches)
	assert.Equal(t, 1, llm.CallCount())
	assert.Equal(t, 0, report.ToolCalls)
	assert.Equal(t, OutcomeDone, report.Outcome)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "What is 6*7?", history[0].Content())
	assert.Equal(t, "42", history[1].Content())
}

func TestReActAgent_ToolStepThenFinish(t *testing.T) {
	var searches int32

	llm := model.NewMockInvoker(
		"Thought: I should search.\nAction: search[AI]",
		"Thought: Got it.\nAction: Finish[AI means artificial intelligence]",
	)
	a := NewReActAgent("react", llm, newSearchRegistry(&searches))

	answer, err := a.Run(context.Background(), "What is AI?")
	require.NoError(t, err)
	assert.Equal(t, "AI means artificial intelligence", answer)
	assert.Equal(t, int32(1), searches)

	calls := llm.Calls()
	require.Len(t, calls, 2)
	require.Len(t, calls[0].Messages, 1)
	assert.Equal(t, core.RoleUser, calls[0].Messages[0].Role())

	second := calls[1].LastContent()
	assert.Contains(t, second, "Action: search[AI]\nObservation: result1")
	assert.Contains(t, second, "**Question:** What is AI?")

	assert.Len(t, a.History(), 2)
}

func TestReActAgent_BudgetExhaustionReturnsFallback(t *testing.T) {
	llm := model.NewMockInvoker()
	for i := 0; i < 10; i++ {
		llm.Queue(fmt.Sprintf("Thought: keep going\nAction: search[q%d]", i))
	}

	a := NewReActAgent("react", llm, newSearchRegistry(nil), WithMaxIterations(3))

	answer, report, err := a.RunWithReport(context.Background(), "never ends")
	require.NoError(t, err)

	assert.Equal(t, FallbackAnswer, answer)
	assert.Equal(t, 3, llm.CallCount())
	assert.Equal(t, OutcomeBudgetExceeded, report.Outcome)
	assert.Equal(t, StateBudgetExceeded, report.Final())
	assert.Equal(t, 3, report.ToolCalls)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, FallbackAnswer, history[1].Content())
}

func TestReActAgent_NoActionAdvances(t *testing.T) {
	llm := model.NewMockInvoker(
		"I am just musing without an action line.",
		"Thought: ok\nAction: not a valid action",
		"Thought: fine\nAction: Finish[done]",
	)
	a := NewReActAgent("react", llm, newSearchRegistry(nil))

	answer, report, err := a.RunWithReport(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "done", answer)
	assert.Equal(t, 3, llm.CallCount())
	assert.Equal(t, 0, report.ToolCalls)
}

func TestReActAgent_UnknownToolObservation(t *testing.T) {
	llm := model.NewMockInvoker(
		"Thought: try\nAction: calculator[1+1]",
		"Thought: no calculator\nAction: Finish[2]",
	)
	a := NewReActAgent("react", llm, nil)

	answer, err := a.Run(context.Background(), "1+1?")
	require.NoError(t, err)
	assert.Equal(t, "2", answer)
	assert.Contains(t, llm.Calls()[1].LastContent(), "Observation: tool 'calculator' not found")
}

func TestReActAgent_ModelErrorAborts(t *testing.T) {
	boom := errors.New("timeout")
	llm := model.NewMockInvoker().QueueError(boom)
	a := NewReActAgent("react", llm, nil)

	_, err := a.Run(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrModelInvocation)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, a.History())
}

func TestReActAgent_TemplateWithUnknownPlaceholderFails(t *testing.T) {
	llm := model.NewMockInvoker("Action: Finish[x]")
	a := NewReActAgent("react", llm, nil, WithPromptTemplate("{tools}\n{question}\n{history}\n{scratchpad}"))

	_, err := a.Run(context.Background(), "q")
	require.Error(t, err)

	var te *core.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "scratchpad", te.Key)
	assert.Equal(t, 0, llm.CallCount())
	assert.Empty(t, a.History())
}

func TestReActAgent_RenderDefaultPrompt(t *testing.T) {
	a := NewReActAgent("react", model.NewMockInvoker(), newSearchRegistry(nil))

	prompt, err := a.RenderPrompt("Why?", "Action: search[x]\nObservation: y")
	require.NoError(t, err)

	assert.Contains(t, prompt, "- search: Search the web")
	assert.Contains(t, prompt, "`{tool_name}[{tool_input}]`")
	assert.Contains(t, prompt, "**Question:** Why?")
	assert.Contains(t, prompt, "## History\nAction: search[x]\nObservation: y")
}

func TestReActAgent_CustomTemplate(t *testing.T) {
	llm := model.NewMockInvoker("Action: Finish[ok]")
	a := NewReActAgent("react", llm, nil, WithPromptTemplate("T={tools} Q={question} H={history}"))

	_, err := a.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "T=no tools available Q=hello H=", llm.Calls()[0].LastContent())
}

func TestReActAgent_StepHistoryIsPerRun(t *testing.T) {
	llm := model.NewMockInvoker(
		"Action: search[first]",
		"Action: Finish[a]",
		"Action: Finish[b]",
	)
	a := NewReActAgent("react", llm, newSearchRegistry(nil))

	_, err := a.Run(context.Background(), "one")
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "two")
	require.NoError(t, err)

	assert.NotContains(t, llm.Calls()[2].LastContent(), "Observation:")
	assert.Len(t, a.History(), 4)
}
