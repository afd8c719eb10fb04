// Package config loads runtime configuration from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	LLM      LLMConfig
	Log      LogConfig
	Agent    AgentConfig
	Executor ExecutorConfig
	Memory   MemoryConfig
	Redis    RedisConfig
	Search   SearchConfig
	Metrics  MetricsConfig
}

type LLMConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"openai"`
	ModelID     string        `envconfig:"LLM_MODEL_ID"`
	APIKey      string        `envconfig:"LLM_API_KEY"`
	BaseURL     string        `envconfig:"LLM_BASE_URL"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"0"`
}

type LogConfig struct {
	Level   string `envconfig:"LOG_LEVEL" default:"info"`
	Format  string `envconfig:"LOG_FORMAT" default:"text"` // text | json
	Backend string `envconfig:"LOG_BACKEND" default:"slog"` // slog | zap
}

type AgentConfig struct {
	MaxToolIterations int `envconfig:"AGENT_MAX_TOOL_ITERATIONS" default:"3"`
	MaxSteps          int `envconfig:"AGENT_MAX_STEPS" default:"5"`

	// ParallelToolCalls runs a turn's calls on the executor pool. Calls then
	// race each other, so a call may not observe the effects of earlier calls
	// in the same response.
	ParallelToolCalls bool `envconfig:"AGENT_PARALLEL_TOOL_CALLS" default:"false"`
}

type ExecutorConfig struct {
	Workers int `envconfig:"EXECUTOR_WORKERS" default:"4"`
}

type MemoryConfig struct {
	Backend   string `envconfig:"MEMORY_BACKEND" default:"inmemory"` // inmemory | redis
	Namespace string `envconfig:"MEMORY_NAMESPACE" default:"default"`
	Limit     int    `envconfig:"MEMORY_LIMIT" default:"0"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type SearchConfig struct {
	TavilyAPIKey  string `envconfig:"TAVILY_API_KEY"`
	SerpAPIAPIKey string `envconfig:"SERPAPI_API_KEY"`
}

// Enabled reports whether at least one search provider has a key.
func (c SearchConfig) Enabled() bool {
	return c.TavilyAPIKey != "" || c.SerpAPIAPIKey != ""
}

type MetricsConfig struct {
	// Addr of the /metrics listener; empty disables it.
	Addr string `envconfig:"METRICS_ADDR"`
}

// Load reads configuration from environment variables.
// It first tries the given .env files (or ./.env when none are given); a
// missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings required to run an agent.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", ErrInvalid, c.LLM.Provider)
	}

	if c.LLM.ModelID == "" {
		return fmt.Errorf("%w: LLM_MODEL_ID is required", ErrInvalid)
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: LLM_API_KEY is required", ErrInvalid)
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("%w: LLM_TIMEOUT must be positive", ErrInvalid)
	}

	if c.Agent.MaxToolIterations < 0 || c.Agent.MaxSteps < 0 {
		return fmt.Errorf("%w: agent iteration budgets must not be negative", ErrInvalid)
	}

	if c.Executor.Workers <= 0 {
		return fmt.Errorf("%w: EXECUTOR_WORKERS must be positive", ErrInvalid)
	}

	switch c.Memory.Backend {
	case "inmemory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required for the redis memory backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown MEMORY_BACKEND %q", ErrInvalid, c.Memory.Backend)
	}

	return nil
}
