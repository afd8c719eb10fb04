package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgetalker/smart-agents/agent"
	"github.com/edgetalker/smart-agents/config"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/memory"
	"github.com/edgetalker/smart-agents/model"
)

// scriptedOpenAI serves chat completions from a fixed list of replies.
func scriptedOpenAI(t *testing.T, replies ...string) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(replies) {
			n = len(replies) - 1
		}

		body, _ := json.Marshal(map[string]any{
			"id":      fmt.Sprintf("chatcmpl-%d", n),
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": replies[n]},
			}},
		})

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func setTestEnv(t *testing.T, baseURL string) string {
	t.Helper()

	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL_ID", "gpt-test")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_BASE_URL", baseURL)
	t.Setenv("MEMORY_BACKEND", "inmemory")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("SERPAPI_API_KEY", "")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	return filepath.Join(t.TempDir(), "absent.env")
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-agent", "react", "-q", "hi"})
	require.NoError(t, err)
	assert.Equal(t, "react", f.agentKind)
	assert.Equal(t, "hi", f.question)

	_, err = parseFlags([]string{"-chain", "x"})
	assert.ErrorContains(t, err, "-chain requires -chains")
}

func TestRun_ToolAgentSingleQuestion(t *testing.T) {
	srv, calls := scriptedOpenAI(t,
		"Saving that. [TOOL_CALL:memory:action=add, content=likes tea]",
		"Noted: you like tea.",
	)
	envFile := setTestEnv(t, srv.URL+"/")

	var out bytes.Buffer

	err := run(context.Background(), []string{"-env", envFile, "-q", "Remember that I like tea"}, strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Equal(t, "Noted: you like tea.\n", out.String())
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestRun_ChainREPL(t *testing.T) {
	srv, calls := scriptedOpenAI(t, "unused")
	envFile := setTestEnv(t, srv.URL+"/")

	chains := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(chains, []byte(`
chains:
  - name: remember
    steps:
      - tool: memory
        input: "action=add, content={input}"
      - tool: memory
        input: "action=list"
`), 0o600))

	var out bytes.Buffer

	err := run(context.Background(),
		[]string{"-env", envFile, "-chains", chains, "-chain", "remember"},
		strings.NewReader("tea\n\nquit\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "> Stored memories (1):\n1. tea\n> > ", out.String())
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestRun_InvalidConfig(t *testing.T) {
	envFile := setTestEnv(t, "")
	t.Setenv("LLM_API_KEY", "")

	err := run(context.Background(), []string{"-env", envFile, "-q", "hi"}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewRegistry_SearchOnlyWithKeys(t *testing.T) {
	cfg := &config.Config{Memory: config.MemoryConfig{Namespace: "n"}}

	reg := newRegistry(cfg, memory.NewInMemoryStore(), logging.NoOpLogger{})
	assert.Equal(t, []string{"memory"}, reg.List())

	cfg.Search.TavilyAPIKey = "tv"
	reg = newRegistry(cfg, memory.NewInMemoryStore(), logging.NoOpLogger{})
	assert.Equal(t, []string{"memory", "search"}, reg.List())
}

func TestApp_NewAgent(t *testing.T) {
	cfg := &config.Config{
		LLM:      config.LLMConfig{Provider: "anthropic", ModelID: "claude-test", APIKey: "k"},
		Agent:    config.AgentConfig{MaxToolIterations: 2, MaxSteps: 4},
		Executor: config.ExecutorConfig{Workers: 2},
		Memory:   config.MemoryConfig{Backend: "inmemory", Namespace: "n"},
	}

	a, err := newApp(context.Background(), cfg, logging.NoOpLogger{})
	require.NoError(t, err)
	defer a.Close()

	ta, err := a.newAgent("tool")
	require.NoError(t, err)
	assert.Equal(t, 2, ta.(*agent.ToolAgent).MaxIterations())

	ra, err := a.newAgent("react")
	require.NoError(t, err)
	assert.Equal(t, 4, ra.(*agent.ReActAgent).MaxIterations())

	_, err = a.newAgent("planner")
	assert.Error(t, err)

	_, err = newModel(config.LLMConfig{Provider: "local"})
	assert.Error(t, err)
}

// slowStore delays writes so a concurrently dispatched search would run
// before the add it follows.
type slowStore struct {
	*memory.InMemoryStore
}

func (s slowStore) Add(ctx context.Context, namespace, content string, metadata map[string]string) (memory.Entry, error) {
	time.Sleep(50 * time.Millisecond)
	return s.InMemoryStore.Add(ctx, namespace, content, metadata)
}

func TestApp_DefaultToolAgentDispatchesInOrder(t *testing.T) {
	cfg := &config.Config{
		LLM:      config.LLMConfig{Provider: "anthropic", ModelID: "claude-test", APIKey: "k"},
		Agent:    config.AgentConfig{MaxToolIterations: 2, MaxSteps: 4},
		Executor: config.ExecutorConfig{Workers: 2},
		Memory:   config.MemoryConfig{Backend: "inmemory", Namespace: "n"},
	}

	a, err := newApp(context.Background(), cfg, logging.NoOpLogger{})
	require.NoError(t, err)
	defer a.Close()

	mock := model.NewMockInvoker(
		"[TOOL_CALL:memory:action=add, content=likes tea] [TOOL_CALL:memory:action=search, query=tea]",
		"done",
	)
	a.llm = mock
	a.registry = newRegistry(cfg, slowStore{memory.NewInMemoryStore()}, logging.NoOpLogger{})

	ta, err := a.newAgent("tool")
	require.NoError(t, err)

	out, err := ta.Run(context.Background(), "remember and recall")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	calls := mock.Calls()
	require.Len(t, calls, 2)

	results := calls[1].LastContent()
	assert.Contains(t, results, "Memory stored (id: ")
	assert.Contains(t, results, "Found 1 memories:\n1. likes tea")
	assert.Less(t, strings.Index(results, "Memory stored"), strings.Index(results, "Found 1 memories"))
}
