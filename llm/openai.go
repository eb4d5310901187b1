package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hubenschmidt/docchat/core"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultChatModel     = openai.GPT4oMini
	DefaultEmbedModel    = string(openai.SmallEmbedding3)
)

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	cfg := DefaultClientConfig()
	cfg.APIKey = apiKey
	return NewOpenAIClientWithConfig(cfg)
}

func NewOpenAIClientWithConfig(cfg ClientConfig) *OpenAIClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = baseURL
	oc.HTTPClient = &statusDoer{client: &http.Client{Timeout: timeout}}

	return &OpenAIClient{client: openai.NewClientWithConfig(oc)}
}

// Chat sends system and user as a two-message exchange and returns the first choice.
func (c *OpenAIClient) Chat(ctx context.Context, model core.ModelConfig, system, user string) (*LLMResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model.Name,
		Messages: []openai.ChatCompletionMessage{
			toOpenAIMessage(core.NewSystemMessage(system)),
			toOpenAIMessage(core.NewUserMessage(user)),
		},
		Temperature: float32(model.Temperature),
		MaxTokens:   model.MaxTokens,
	})
	if err != nil {
		return nil, translateError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	return &LLMResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Embed generates an embedding for a single input.
func (c *OpenAIClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, translateError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	raw := resp.Data[0].Embedding
	embedding := make([]float64, len(raw))
	for i, v := range raw {
		embedding[i] = float64(v)
	}

	return &EmbeddingResponse{
		Embedding:  embedding,
		TokenCount: resp.Usage.TotalTokens,
	}, nil
}

func toOpenAIMessage(m core.Message) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
}

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 4096

// statusDoer reports non-2xx responses as *APIError whatever their content
// type, so callers always see the upstream status.
type statusDoer struct {
	client *http.Client
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// translateError normalises upstream failures to *APIError. Transport and
// decode failures pass through wrapped.
func translateError(err error) error {
	var own *APIError
	if errors.As(err, &own) {
		return own
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return fmt.Errorf("request failed: %w", err)
}
