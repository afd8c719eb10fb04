// Package openai provides a model.Invoker backed by the OpenAI Chat
// Completions API. Any OpenAI-compatible endpoint can be targeted through
// Options.BaseURL.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64

	APIKey  string        // falls back to OPENAI_API_KEY when empty
	BaseURL string        // optional, for OpenAI-compatible APIs
	Timeout time.Duration // per-request timeout, 0 = SDK default

	// MaxRetries overrides the SDK retry count when >= 0.
	MaxRetries int
}

// Model wraps the Chat Completions API behind model.Invoker.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		MaxRetries:          -1,
	}
}

// NewModel creates a new OpenAI model using the official client.
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

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
// Connection fields of Options (APIKey, BaseURL, Timeout, MaxRetries) are
// ignored; configure them on the client instead.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Invoke implements model.Invoker with a single non-streaming completion.
func (m *Model) Invoke(ctx context.Context, messages []core.Message, opts model.Options) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(messages, opts))
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// buildParams merges adapter defaults with per-call options. Only the first
// stop sequence is forwarded.
func (m *Model) buildParams(messages []core.Message, opts model.Options) openai.ChatCompletionNewParams {
	temperature := m.opts.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	maxTokens := m.opts.MaxCompletionTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages),
		Model:               m.opts.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	if len(opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(opts.Stop[0]),
		}
	}

	return params
}

// buildMessages converts transcript messages into chat messages. Tool
// observations travel in-band, so the tool role maps to a user turn.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role() {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content()))
		case core.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content()))
		default:
			out = append(out, openai.UserMessage(msg.Content()))
		}
	}

	return out
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
