package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/tool"
)

type recordingTool struct {
	inputs []string
}

func newTestRegistry(rec *recordingTool) *tool.Registry {
	r := tool.NewRegistry()
	r.RegisterFunction("upper", "upper-case", func(_ context.Context, s string) (string, error) {
		rec.inputs = append(rec.inputs, "upper:"+s)
		return strings.ToUpper(s), nil
	})
	r.RegisterFunction("wrap", "wraps in brackets", func(_ context.Context, s string) (string, error) {
		rec.inputs = append(rec.inputs, "wrap:"+s)
		return "<" + s + ">", nil
	})
	r.RegisterFunction("fail", "fails", func(_ context.Context, s string) (string, error) {
		rec.inputs = append(rec.inputs, "fail:"+s)
		return "", errors.New("quota exceeded")
	})

	return r
}

func TestChain_ExecutePipesOutputs(t *testing.T) {
	rec := &recordingTool{}

	c := New("shout", "upper then wrap").
		AddStep("upper", "{input}", "key1").
		AddStep("wrap", "{key1}!", "key2")

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, "<HELLO!>", out)
	assert.Equal(t, []string{"upper:hello", "wrap:HELLO!"}, rec.inputs)
}

func TestChain_DefaultOutputKeys(t *testing.T) {
	rec := &recordingTool{}

	c := New("defaults", "").
		AddStep("upper", "{input}", "").
		AddStep("wrap", "{step_0_result}", "")

	assert.Equal(t, "step_0_result", c.Steps[0].OutputKey)
	assert.Equal(t, "step_1_result", c.Steps[1].OutputKey)

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "<A>", out)
}

func TestChain_MissingKeyFailsFastWithoutInvokingTool(t *testing.T) {
	rec := &recordingTool{}

	c := New("broken", "").
		AddStep("upper", "{input}", "key1").
		AddStep("wrap", "{nope}", "key2").
		AddStep("upper", "{key2}", "key3")

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "x", nil)
	require.Error(t, err)

	assert.Equal(t, "template interpolation failed: missing key 'nope'", out)
	assert.Equal(t, []string{"upper:x"}, rec.inputs)

	var te *core.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "nope", te.Key)

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "wrap", se.Tool)
}

func TestChain_ToolFailureFailsFast(t *testing.T) {
	rec := &recordingTool{}

	c := New("failing", "").
		AddStep("fail", "{input}", "").
		AddStep("upper", "{step_0_result}", "")

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "x", nil)
	require.Error(t, err)

	assert.Equal(t, "tool 'fail' execution failed: quota exceeded", out)
	assert.Equal(t, []string{"fail:x"}, rec.inputs)
	assert.ErrorIs(t, err, core.ErrToolExecution)

	var te *tool.ToolError
	assert.True(t, errors.As(err, &te))
}

func TestChain_MissingToolFails(t *testing.T) {
	c := New("ghost", "").AddStep("ghost", "{input}", "")

	out, err := c.Execute(context.Background(), tool.NewRegistry(), "x", nil)
	require.Error(t, err)
	assert.Equal(t, "tool 'ghost' execution failed: not found", out)
	assert.ErrorIs(t, err, core.ErrToolNotFound)
}

func TestChain_Empty(t *testing.T) {
	out, err := New("empty", "").Execute(context.Background(), tool.NewRegistry(), "x", nil)
	assert.Equal(t, "tool chain is empty", out)
	assert.ErrorIs(t, err, core.ErrEmptyChain)
}

func TestChain_VarsSeedContextAndAreNotMutated(t *testing.T) {
	rec := &recordingTool{}
	vars := map[string]string{"lang": "go", "input": "ignored"}

	c := New("vars", "").AddStep("wrap", "{lang}:{input} {{literal}}", "out")

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "real", vars)
	require.NoError(t, err)

	assert.Equal(t, "<go:real {literal}>", out)
	assert.Equal(t, map[string]string{"lang": "go", "input": "ignored"}, vars)
}

func TestChain_MalformedTemplate(t *testing.T) {
	rec := &recordingTool{}
	c := New("bad", "").AddStep("wrap", "{unclosed", "")

	out, err := c.Execute(context.Background(), newTestRegistry(rec), "x", nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(out, "template interpolation failed:"))
	assert.Empty(t, rec.inputs)
}

// -------------------- Manager Tests --------------------

func TestManager_RegisterExecuteListInfo(t *testing.T) {
	rec := &recordingTool{}
	m := NewManager(newTestRegistry(rec))

	m.Register(New("a", "first").AddStep("upper", "{input}", ""))
	m.Register(New("b", "second").AddStep("wrap", "{input}", "w"))

	assert.Equal(t, []string{"a", "b"}, m.List())

	out, err := m.Execute(context.Background(), "b", "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "<x>", out)

	info, ok := m.Info("b")
	require.True(t, ok)
	assert.Equal(t, Info{
		Name:        "b",
		Description: "second",
		Steps:       1,
		StepDetails: []Step{{ToolName: "wrap", InputTemplate: "{input}", OutputKey: "w"}},
	}, info)

	_, ok = m.Info("zzz")
	assert.False(t, ok)
}

func TestManager_UnknownChain(t *testing.T) {
	m := NewManager(tool.NewRegistry())

	out, err := m.Execute(context.Background(), "nope", "x", nil)
	assert.ErrorIs(t, err, ErrChainNotFound)
	assert.Equal(t, "chain 'nope' not found", out)
}

func TestManager_OverwriteKeepsPosition(t *testing.T) {
	m := NewManager(tool.NewRegistry())
	m.Register(New("a", "v1"))
	m.Register(New("b", ""))
	m.Register(New("a", "v2"))

	assert.Equal(t, []string{"a", "b"}, m.List())

	info, _ := m.Info("a")
	assert.Equal(t, "v2", info.Description)
}

func TestChain_StructLiteralConcurrentExecute(t *testing.T) {
	reg := tool.NewRegistry()
	reg.RegisterFunction("upper", "upper-case", func(_ context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	})

	c := &Chain{
		Name:  "literal",
		Steps: []Step{{ToolName: "upper", InputTemplate: "{input}", OutputKey: "out"}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.Execute(context.Background(), reg, "go", nil)
			assert.NoError(t, err)
			assert.Equal(t, "GO", out)
		}()
	}
	wg.Wait()

	assert.Nil(t, c.logger)
}
