// Package answer turns ranked documents and a question into a grounded answer
// from the chat completion service.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/vector"
)

// ErrGeneration marks a non-success response from the generation service.
var ErrGeneration = errors.New("failed to generate response")

// Source cites one document used to answer.
type Source struct {
	File  string
	Score float64
}

// Answer is the generated text plus the documents it was grounded on.
type Answer struct {
	Text    string
	Sources []Source
	Usage   llm.Usage
}

type Composer struct {
	client llm.Client
	model  core.ModelConfig
	prompt *Prompt
}

func NewComposer(client llm.Client, model core.ModelConfig, prompt *Prompt) *Composer {
	if prompt == nil {
		prompt = MustPrompt("", "")
	}
	return &Composer{client: client, model: model, prompt: prompt}
}

// Compose asks the model to answer question from results. Sources keep the
// order of results.
func (c *Composer) Compose(ctx context.Context, question string, results []vector.SearchResult) (*Answer, error) {
	system, err := c.prompt.Render(results)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Chat(ctx, c.model, system, question)
	if err != nil {
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &Answer{
		Text:    resp.Content,
		Sources: Sources(results),
		Usage:   resp.Usage,
	}, nil
}

// Sources lists (filename, score) for results in order.
func Sources(results []vector.SearchResult) []Source {
	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{File: r.Document.Metadata.Filename, Score: r.Score}
	}
	return sources
}
