// Package anthropic provides a model.Invoker backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, connection settings).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64

	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries overrides the SDK retry count when >= 0.
	MaxRetries int
}

// Model wraps the Anthropic Messages API behind model.Invoker.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		MaxRetries:  -1,
	}
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	}

	if opts.MaxRetries >= 0 {
		clientOpts = append(clientOpts, option.WithMaxRetries(opts.MaxRetries))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Invoke implements model.Invoker. System messages are lifted into the
// request's system blocks; the remaining turns are sent in order.
func (m *Model) Invoke(ctx context.Context, messages []core.Message, opts model.Options) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	resp, err := m.client.Messages.New(ctx, m.buildParams(messages, opts))
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}

func (m *Model) buildParams(messages []core.Message, opts model.Options) anthropic.MessageNewParams {
	temperature := m.opts.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	maxTokens := m.opts.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}

	if system := extractSystem(messages); len(system) > 0 {
		params.System = system
	}

	if len(opts.Stop) > 0 {
		params.StopSequences = opts.Stop
	}

	return params
}

// buildMessages converts non-system messages; tool observations become user
// turns since they travel in-band.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		if msg.Content() == "" {
			continue
		}

		switch msg.Role() {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content())))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content())))
		}
	}

	return out
}

func extractSystem(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam

	for _, msg := range messages {
		if msg.Role() == core.RoleSystem && msg.Content() != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content()})
		}
	}

	return blocks
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic"}
}
