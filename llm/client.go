package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/hubenschmidt/docchat/core"
)

// Client sends a system prompt plus one user message and returns the top choice.
type Client interface {
	Chat(ctx context.Context, model core.ModelConfig, system, user string) (*LLMResponse, error)
}

// EmbeddingClient turns text into an embedding vector.
type EmbeddingClient interface {
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: DefaultOpenAIBaseURL,
		Timeout: 60 * time.Second,
	}
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return core.ErrLLMRequest
}
