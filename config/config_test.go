package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_MODEL_ID", "gpt-4o-mini")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Agent.MaxToolIterations)
	assert.Equal(t, 5, cfg.Agent.MaxSteps)
	assert.False(t, cfg.Agent.ParallelToolCalls)
	assert.Equal(t, 4, cfg.Executor.Workers)
	assert.Equal(t, "inmemory", cfg.Memory.Backend)
	assert.Equal(t, "slog", cfg.Log.Backend)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.False(t, cfg.Search.Enabled())

	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "LLM_PROVIDER=anthropic\nLLM_MODEL_ID=claude-test\nLLM_API_KEY=key\nLLM_TIMEOUT=5s\nTAVILY_API_KEY=tv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set
	t.Setenv("LLM_MODEL_ID", "from-env")

	for _, k := range []string{"LLM_PROVIDER", "LLM_API_KEY", "LLM_TIMEOUT", "TAVILY_API_KEY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "from-env", cfg.LLM.ModelID)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Search.Enabled())
}

func TestLoad_ParallelToolCallsOptIn(t *testing.T) {
	t.Setenv("LLM_MODEL_ID", "gpt-4o-mini")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("AGENT_PARALLEL_TOOL_CALLS", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.True(t, cfg.Agent.ParallelToolCalls)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("EXECUTOR_WORKERS", "many")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorContains(t, err, "failed to process env config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLM:      LLMConfig{Provider: "openai", ModelID: "m", APIKey: "k", Timeout: time.Second},
			Agent:    AgentConfig{MaxToolIterations: 3, MaxSteps: 5},
			Executor: ExecutorConfig{Workers: 4},
			Memory:   MemoryConfig{Backend: "inmemory"},
		}
	}

	cases := map[string]func(c *Config){
		"provider":   func(c *Config) { c.LLM.Provider = "local" },
		"model":      func(c *Config) { c.LLM.ModelID = "" },
		"api key":    func(c *Config) { c.LLM.APIKey = "" },
		"timeout":    func(c *Config) { c.LLM.Timeout = 0 },
		"iterations": func(c *Config) { c.Agent.MaxSteps = -1 },
		"workers":    func(c *Config) { c.Executor.Workers = 0 },
		"backend":    func(c *Config) { c.Memory.Backend = "sqlite" },
		"redis addr": func(c *Config) { c.Memory.Backend = "redis"; c.Redis.Addr = "" },
	}

	require.NoError(t, valid().Validate())

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}
