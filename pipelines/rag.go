// Package pipelines wires retrieval and answer composition into the chat flow.
package pipelines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/monitor"
	"github.com/hubenschmidt/docchat/vector"
)

type Config struct {
	Store      vector.Store
	Embedder   llm.EmbeddingClient
	EmbedModel string
	Composer   *answer.Composer
	TopK       int
	Logger     *zap.Logger
}

// RAG answers a question from the documents most similar to it.
type RAG struct {
	store      vector.Store
	embedder   llm.EmbeddingClient
	embedModel string
	composer   *answer.Composer
	topK       int
	logger     *zap.Logger
}

func NewRAG(cfg Config) (*RAG, error) {
	var errs []error
	if cfg.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if cfg.Embedder == nil {
		errs = append(errs, errors.New("embedder is required"))
	}
	if cfg.Composer == nil {
		errs = append(errs, errors.New("composer is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	if cfg.EmbedModel == "" {
		cfg.EmbedModel = llm.DefaultEmbedModel
	}
	if cfg.TopK == 0 {
		cfg.TopK = vector.DefaultTopK
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &RAG{
		store:      cfg.Store,
		embedder:   cfg.Embedder,
		embedModel: cfg.EmbedModel,
		composer:   cfg.Composer,
		topK:       cfg.TopK,
		logger:     cfg.Logger,
	}, nil
}

// Retrieve embeds question and returns the closest documents. The store is
// checked before the embedding call so a missing store costs no API request.
func (r *RAG) Retrieve(ctx context.Context, question string, col monitor.Collector) ([]vector.SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, core.ErrEmptyQuestion
	}
	if col == nil {
		col = monitor.NewNoOpCollector()
	}

	if err := r.store.Ready(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	emb, err := r.embedder.Embed(ctx, r.embedModel, question)
	if err != nil {
		monitor.Observe(col, monitor.StageEmbed, start, 0, 0, err)
		return nil, core.WithContext(core.NewOpError("embed", err), "model", r.embedModel)
	}
	monitor.Observe(col, monitor.StageEmbed, start, emb.TokenCount, 0, nil)

	start = time.Now()
	results, err := r.store.Search(ctx, emb.Embedding, r.topK)
	monitor.Observe(col, monitor.StageSearch, start, 0, 0, err)
	if err != nil {
		return nil, core.NewOpError("search", err)
	}

	r.logger.Debug("retrieved documents",
		zap.Int("count", len(results)),
		zap.Int("top_k", r.topK),
		zap.Int("dimensions", len(emb.Embedding)),
	)
	return results, nil
}

// Answer runs retrieval then composition.
func (r *RAG) Answer(ctx context.Context, question string, col monitor.Collector) (*answer.Answer, error) {
	if col == nil {
		col = monitor.NewNoOpCollector()
	}

	results, err := r.Retrieve(ctx, question, col)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ans, err := r.composer.Compose(ctx, question, results)
	if err != nil {
		monitor.Observe(col, monitor.StageGenerate, start, 0, 0, err)
		return nil, core.NewOpError("generate", err)
	}
	monitor.Observe(col, monitor.StageGenerate, start, ans.Usage.PromptTokens, ans.Usage.CompletionTokens, nil)

	return ans, nil
}
