package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultTavilyURL  = "https://api.tavily.com/search"
	defaultSerpAPIURL = "https://serpapi.com/search.json"

	// DefaultMaxResults is the number of hits requested from each provider.
	DefaultMaxResults = 3

	snippetLimit = 150
)

// Provider is one web search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

// ProviderOptions configures the HTTP providers.
type ProviderOptions struct {
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

func newProviderOptions(baseURL string, optFns []func(o *ProviderOptions)) ProviderOptions {
	opts := ProviderOptions{
		BaseURL:    baseURL,
		MaxResults: DefaultMaxResults,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	return opts
}

// Tavily queries the Tavily search API.
type Tavily struct {
	apiKey string
	opts   ProviderOptions
}

// NewTavily creates a Tavily provider.
func NewTavily(apiKey string, optFns ...func(o *ProviderOptions)) *Tavily {
	return &Tavily{apiKey: apiKey, opts: newProviderOptions(defaultTavilyURL, optFns)}
}

// Name returns "tavily".
func (p *Tavily) Name() string { return "tavily" }

// Search posts the query and renders the direct answer (if any) followed by
// the top results.
func (p *Tavily) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"api_key":        p.apiKey,
		"query":          query,
		"max_results":    p.opts.MaxResults,
		"include_answer": true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	raw, err := do(p.opts.HTTPClient, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	if answer := gjson.GetBytes(raw, "answer").String(); answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", answer)
	}

	results := gjson.GetBytes(raw, "results").Array()
	if len(results) == 0 && b.Len() == 0 {
		return "", nil
	}

	b.WriteString("Related results:\n")

	for i, r := range limitResults(results, p.opts.MaxResults) {
		fmt.Fprintf(&b, "[%d] %s\n    %s\n", i+1, r.Get("title").String(), truncate(r.Get("content").String(), snippetLimit))
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// SerpAPI queries Google through SerpAPI.
type SerpAPI struct {
	apiKey string
	opts   ProviderOptions
}

// NewSerpAPI creates a SerpAPI provider.
func NewSerpAPI(apiKey string, optFns ...func(o *ProviderOptions)) *SerpAPI {
	return &SerpAPI{apiKey: apiKey, opts: newProviderOptions(defaultSerpAPIURL, optFns)}
}

// Name returns "serpapi".
func (p *SerpAPI) Name() string { return "serpapi" }

// Search renders the organic results.
func (p *SerpAPI) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("num", fmt.Sprint(p.opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	raw, err := do(p.opts.HTTPClient, req)
	if err != nil {
		return "", err
	}

	if msg := gjson.GetBytes(raw, "error").String(); msg != "" {
		return "", fmt.Errorf("serpapi error: %s", msg)
	}

	results := gjson.GetBytes(raw, "organic_results").Array()
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder

	b.WriteString("Google results:\n")

	for i, r := range limitResults(results, p.opts.MaxResults) {
		fmt.Fprintf(&b, "[%d] %s\n    %s\n", i+1, r.Get("title").String(), r.Get("snippet").String())
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("failed to parse response: invalid JSON")
	}

	return raw, nil
}

func limitResults(results []gjson.Result, n int) []gjson.Result {
	if len(results) > n {
		return results[:n]
	}

	return results
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
