package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/docchat/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/"
	return NewOpenAIClientWithConfig(cfg)
}

func TestChatSendsTwoMessageExchange(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "first"}, "finish_reason": "stop"},
			            {"message": {"role": "assistant", "content": "second"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	})

	resp, err := client.Chat(context.Background(), core.DefaultModelConfig(DefaultChatModel), "system prompt", "question?")
	require.NoError(t, err)

	assert.Equal(t, "first", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, DefaultChatModel, got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 1e-9)
	assert.EqualValues(t, 1000, got["max_tokens"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "system prompt"}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "question?"}, msgs[1])
}

func TestChatUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Chat(context.Background(), core.DefaultModelConfig(DefaultChatModel), "s", "u")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota exceeded")
	assert.ErrorIs(t, err, core.ErrLLMRequest)
}

func TestChatNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Chat(context.Background(), core.DefaultModelConfig(DefaultChatModel), "s", "u")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestEmbed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultEmbedModel, req["model"])
		assert.Equal(t, "hello", req["input"])

		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3], "index": 0}], "usage": {"prompt_tokens": 1, "total_tokens": 1}}`))
	})

	resp, err := client.Embed(context.Background(), DefaultEmbedModel, "hello")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, resp.Embedding, 1e-6)
	assert.Equal(t, 1, resp.TokenCount)
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	client := NewOpenAIClientWithConfig(cfg)

	_, err := client.Chat(context.Background(), core.DefaultModelConfig(DefaultChatModel), "s", "u")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.NotErrorIs(t, err, core.ErrLLMRequest)
}

func TestEmbedUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Embed(context.Background(), DefaultEmbedModel, "hello")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
