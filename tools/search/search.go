// Package search provides the "search" tool, a web search that tries the
// configured providers in order and returns the first non-empty result.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/tool"
)

// Name is the registry name of the tool.
const Name = "search"

var (
	// ErrNoProviders is returned when no provider is configured.
	ErrNoProviders = errors.New("no search providers configured")

	// ErrAllProvidersFailed is returned when every provider failed or came back empty.
	ErrAllProvidersFailed = errors.New("all search providers failed")
)

// Options configures the search tool.
type Options struct {
	Logger logging.Logger
}

// Tool implements tool.Tool over a list of providers.
type Tool struct {
	providers []Provider
	logger    logging.Logger
}

var _ tool.Tool = (*Tool)(nil)

// New creates the search tool. Providers are tried in the given order.
func New(providers []Provider, optFns ...func(o *Options)) *Tool {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Tool{providers: providers, logger: logging.OrNoOp(opts.Logger)}
}

// FromKeys builds the provider list from API keys, skipping empty ones.
func FromKeys(tavilyKey, serpAPIKey string) []Provider {
	var providers []Provider

	if tavilyKey != "" {
		providers = append(providers, NewTavily(tavilyKey))
	}

	if serpAPIKey != "" {
		providers = append(providers, NewSerpAPI(serpAPIKey))
	}

	return providers
}

// Name returns the tool identifier.
func (t *Tool) Name() string { return Name }

// Description returns the tool description.
func (t *Tool) Description() string {
	return "Web search for current facts and news. Parameter: the search query."
}

// Parameters returns the JSON schema for tool parameters.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
		},
		"required": []string{"query"},
	}
}

// Run searches with each provider until one returns content.
func (t *Tool) Run(ctx context.Context, in tool.Input) (string, error) {
	query := strings.TrimSpace(in.Arg("query", in.Text))
	if query == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	if len(t.providers) == 0 {
		return "", ErrNoProviders
	}

	for _, p := range t.providers {
		out, err := p.Search(ctx, query)
		if err != nil {
			t.logger.Warn("search.provider.failed", "provider", p.Name(), "error", err)
			continue
		}

		if strings.TrimSpace(out) == "" {
			t.logger.Debug("search.provider.empty", "provider", p.Name())
			continue
		}

		return fmt.Sprintf("%s search results:\n\n%s", p.Name(), out), nil
	}

	return "", ErrAllProvidersFailed
}
