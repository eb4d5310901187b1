package pipelines

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/monitor"
	"github.com/hubenschmidt/docchat/vector"
)

type fakeEmbedder struct {
	vec   []float64
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, model, input string) (*llm.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.EmbeddingResponse{Embedding: f.vec, TokenCount: 5}, nil
}

type fakeChat struct {
	system string
	err    error
}

func (f *fakeChat) Chat(ctx context.Context, model core.ModelConfig, system, user string) (*llm.LLMResponse, error) {
	f.system = system
	if f.err != nil {
		return nil, f.err
	}
	return &llm.LLMResponse{
		Content: "answer",
		Usage:   llm.Usage{PromptTokens: 100, CompletionTokens: 10, TotalTokens: 110},
	}, nil
}

func docs() []vector.Document {
	return []vector.Document{
		{Content: "alpha", Embedding: []float64{1, 0}, Metadata: vector.Metadata{Filename: "a.md"}},
		{Content: "beta", Embedding: []float64{0, 1}, Metadata: vector.Metadata{Filename: "b.md"}},
		{Content: "gamma", Embedding: []float64{1, 1}, Metadata: vector.Metadata{Filename: "c.md"}},
		{Content: "delta", Embedding: []float64{-1, 0}, Metadata: vector.Metadata{Filename: "d.md"}},
	}
}

func newRAG(t *testing.T, store vector.Store, emb *fakeEmbedder, chat *fakeChat) *RAG {
	t.Helper()
	rag, err := NewRAG(Config{
		Store:    store,
		Embedder: emb,
		Composer: answer.NewComposer(chat, core.DefaultModelConfig(llm.DefaultChatModel), nil),
	})
	require.NoError(t, err)
	return rag
}

func TestNewRAGRequiresDependencies(t *testing.T) {
	_, err := NewRAG(Config{})
	require.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "store is required")
	assert.Contains(t, err.Error(), "embedder is required")
	assert.Contains(t, err.Error(), "composer is required")
}

func TestAnswerUsesTopThreeDocuments(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0}}
	chat := &fakeChat{}
	rag := newRAG(t, vector.NewMemoryStore(docs()), emb, chat)

	col := monitor.NewInMemoryCollector("req")
	ans, err := rag.Answer(context.Background(), "which?", col)
	require.NoError(t, err)

	assert.Equal(t, "answer", ans.Text)
	require.Len(t, ans.Sources, 3)
	assert.Equal(t, []string{"a.md", "c.md", "b.md"},
		[]string{ans.Sources[0].File, ans.Sources[1].File, ans.Sources[2].File})
	assert.InDelta(t, 1.0, ans.Sources[0].Score, 1e-9)
	assert.NotContains(t, chat.system, "d.md")

	m := col.Flush()
	require.Len(t, m.Stages, 3)
	assert.Equal(t, monitor.StageEmbed, m.Stages[0].Stage)
	assert.Equal(t, monitor.StageSearch, m.Stages[1].Stage)
	assert.Equal(t, monitor.StageGenerate, m.Stages[2].Stage)
	assert.Equal(t, 105, m.TotalTokensIn)
	assert.Equal(t, 10, m.TotalTokensOut)
}

func TestRetrieveMissingStoreSkipsEmbedding(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0}}
	store := vector.NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	rag := newRAG(t, store, emb, &fakeChat{})

	_, err := rag.Retrieve(context.Background(), "q", nil)
	require.ErrorIs(t, err, vector.ErrStoreNotFound)
	assert.Zero(t, emb.calls)
}

func TestRetrieveEmptyQuestion(t *testing.T) {
	rag := newRAG(t, vector.NewMemoryStore(docs()), &fakeEmbedder{}, &fakeChat{})
	_, err := rag.Retrieve(context.Background(), "   ", nil)
	require.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	emb := &fakeEmbedder{err: &llm.APIError{StatusCode: 401, Body: "bad key"}}
	rag := newRAG(t, vector.NewMemoryStore(docs()), emb, &fakeChat{})

	col := monitor.NewInMemoryCollector("req")
	_, err := rag.Retrieve(context.Background(), "q", col)
	require.ErrorIs(t, err, core.ErrLLMRequest)
	assert.NotErrorIs(t, err, answer.ErrGeneration)

	var opErr *core.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "embed", opErr.Op)

	stages := col.Flush().Stages
	require.Len(t, stages, 1)
	assert.False(t, stages[0].Success)
}

func TestRetrieveDimensionMismatch(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0, 0}}
	rag := newRAG(t, vector.NewMemoryStore(docs()), emb, &fakeChat{})

	_, err := rag.Retrieve(context.Background(), "q", nil)
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
}

func TestAnswerGenerationFailure(t *testing.T) {
	chat := &fakeChat{err: &llm.APIError{StatusCode: 500, Body: "oops"}}
	rag := newRAG(t, vector.NewMemoryStore(docs()), &fakeEmbedder{vec: []float64{1, 0}}, chat)

	_, err := rag.Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, answer.ErrGeneration)
	assert.False(t, errors.Is(err, vector.ErrStoreNotFound))
}
