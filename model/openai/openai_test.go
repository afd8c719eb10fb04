package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgetalker/smart-agents/core"
	"github.com/edgetalker/smart-agents/model"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello there"}}
  ]
}`

func newTestServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestModel(srv *httptest.Server) *Model {
	return NewModel(func(o *Options) {
		o.APIKey = "test-key"
		o.BaseURL = srv.URL + "/"
		o.MaxRetries = 0
		o.Model = "gpt-4o-mini"
		o.Temperature = 0.3
	})
}

func TestModel_Invoke(t *testing.T) {
	var req map[string]any
	srv := newTestServer(t, http.StatusOK, completionBody, &req)
	m := newTestModel(srv)

	out, err := m.Invoke(context.Background(), []core.Message{
		core.SystemMessage("be brief"),
		core.UserMessage("hi"),
		core.AssistantMessage("[TOOL_CALL:search:x]"),
		core.NewMessage(core.RoleTool, "observation"),
	}, model.Options{Stop: []string{"Observation:"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)

	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.InDelta(t, 0.3, req["temperature"], 1e-9)
	assert.Equal(t, "Observation:", req["stop"])

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)

	roles := make([]string, len(msgs))
	for i, raw := range msgs {
		roles[i] = raw.(map[string]any)["role"].(string)
	}

	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
}

func TestModel_InvokeOverridesTemperature(t *testing.T) {
	var req map[string]any
	srv := newTestServer(t, http.StatusOK, completionBody, &req)
	m := newTestModel(srv)

	_, err := m.Invoke(context.Background(), []core.Message{core.UserMessage("hi")},
		model.Options{Temperature: model.Float(0), MaxTokens: 64})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, req["temperature"], 1e-9)
	assert.InDelta(t, 64.0, req["max_completion_tokens"], 1e-9)
}

func TestModel_InvokeAPIError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, `{"error":{"message":"bad request","type":"invalid_request_error"}}`, nil)
	m := newTestModel(srv)

	_, err := m.Invoke(context.Background(), []core.Message{core.UserMessage("hi")}, model.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api error")
}

func TestModel_InvokeNoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	m := newTestModel(srv)

	_, err := m.Invoke(context.Background(), []core.Message{core.UserMessage("hi")}, model.Options{})
	assert.EqualError(t, err, "no choices returned")
}

func TestModel_InvokeNoMessages(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k" })

	_, err := m.Invoke(context.Background(), nil, model.Options{})
	assert.Error(t, err)
}

func TestModel_Info(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k"; o.Model = "gpt-x" })
	assert.Equal(t, model.Info{Name: "gpt-x", Provider: "openai"}, m.Info())
}
