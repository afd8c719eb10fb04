package main

import (
	"context"
	"fmt"
	"io"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/edgetalker/smart-agents/agent"
	"github.com/edgetalker/smart-agents/chain"
	"github.com/edgetalker/smart-agents/config"
	"github.com/edgetalker/smart-agents/executor"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/memory"
	"github.com/edgetalker/smart-agents/model"
	"github.com/edgetalker/smart-agents/model/anthropic"
	"github.com/edgetalker/smart-agents/model/openai"
	"github.com/edgetalker/smart-agents/tool"
	memorytool "github.com/edgetalker/smart-agents/tools/memory"
	"github.com/edgetalker/smart-agents/tools/search"
)

// app holds the wired components for one CLI invocation.
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	llm      model.Invoker
	registry *tool.Registry
	executor *executor.Executor
	chains   *chain.Manager
	closers  []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func newLogger(cfg config.LogConfig) (logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Level)

	if cfg.Backend == "zap" {
		z, err := logging.NewZap(level, cfg.Format == "json")
		if err != nil {
			return nil, nil, fmt.Errorf("build zap logger: %w", err)
		}

		return z, func() { _ = z.Sync() }, nil
	}

	return logging.New(level, cfg.Format), func() {}, nil
}

func newModel(cfg config.LLMConfig) (model.Invoker, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.ModelID
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Timeout = cfg.Timeout
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.ModelID)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Timeout = cfg.Timeout
			o.Temperature = cfg.Temperature

			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newStore(ctx context.Context, cfg *config.Config) (memory.Store, io.Closer, error) {
	if cfg.Memory.Backend != "redis" {
		return memory.NewInMemoryStore(), nil, nil
	}

	client, err := memory.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}

	return memory.NewRedisStore(client, func(o *memory.RedisOptions) {
		o.MemoryLimit = cfg.Memory.Limit
	}), client, nil
}

// newRegistry registers the built-in tools. Search is only available when a
// provider key is configured.
func newRegistry(cfg *config.Config, store memory.Store, logger logging.Logger) *tool.Registry {
	reg := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = logger
	})

	reg.Register(memorytool.New(store, func(o *memorytool.Options) {
		o.Namespace = cfg.Memory.Namespace
		o.Logger = logger
	}))

	if cfg.Search.Enabled() {
		reg.Register(search.New(search.FromKeys(cfg.Search.TavilyAPIKey, cfg.Search.SerpAPIAPIKey), func(o *search.Options) {
			o.Logger = logger
		}))
	}

	return reg
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	llm, err := newModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	store, closer, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, llm: llm}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.registry = newRegistry(cfg, store, logger)
	a.executor = executor.New(a.registry, func(o *executor.Options) {
		o.Workers = cfg.Executor.Workers
		o.Logger = logger
	})
	a.chains = chain.NewManager(a.registry, func(o *chain.ManagerOptions) {
		o.Logger = logger
	})

	return a, nil
}

func (a *app) newAgent(kind string) (agent.Agent, error) {
	switch kind {
	case "tool":
		opts := []func(o *agent.Options){
			agent.WithLogger(a.logger),
			agent.WithMaxIterations(a.cfg.Agent.MaxToolIterations),
		}
		if a.cfg.Agent.ParallelToolCalls {
			opts = append(opts, agent.WithExecutor(a.executor))
		}

		return agent.NewToolAgent("assistant", a.llm, a.registry, opts...), nil
	case "react":
		return agent.NewReActAgent("react", a.llm, a.registry,
			agent.WithLogger(a.logger),
			agent.WithMaxIterations(a.cfg.Agent.MaxSteps),
		), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q (want tool or react)", kind)
	}
}
