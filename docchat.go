// Package docchat answers questions from an indexed document collection.
//
// Example usage:
//
//	client := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))
//	rag, err := docchat.NewRAG(docchat.RAGConfig{
//	    Store:    docchat.NewFileStore(""),
//	    Embedder: client,
//	    Composer: docchat.NewComposer(client, docchat.DefaultModelConfig("gpt-4o-mini"), nil),
//	})
//	srv, err := docchat.NewServer(docchat.ServerConfig{Pipeline: rag, APIKey: key})
//	http.ListenAndServe(":3000", srv.Handler())
package docchat

import (
	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/pipelines"
	"github.com/hubenschmidt/docchat/server"
	"github.com/hubenschmidt/docchat/vector"
)

// Type aliases
type (
	Document     = vector.Document
	SearchResult = vector.SearchResult
	Store        = vector.Store
	ModelConfig  = core.ModelConfig
	Answer       = answer.Answer
	Source       = answer.Source
	RAG          = pipelines.RAG
	RAGConfig    = pipelines.Config
	Server       = server.Server
	ServerConfig = server.Config
)

// Ranking
const DefaultTopK = vector.DefaultTopK

func CosineSimilarity(a, b []float64) (float64, error) {
	return vector.CosineSimilarity(a, b)
}

func Rank(query []float64, docs []Document, topK int) ([]SearchResult, error) {
	return vector.Rank(query, docs, topK)
}

// Stores
func NewFileStore(path string) *vector.FileStore {
	return vector.NewFileStore(path)
}

func NewMemoryStore(docs []Document) *vector.MemoryStore {
	return vector.NewMemoryStore(docs)
}

// Answering
func DefaultModelConfig(name string) ModelConfig {
	return core.DefaultModelConfig(name)
}

func NewComposer(client llm.Client, model ModelConfig, prompt *answer.Prompt) *answer.Composer {
	return answer.NewComposer(client, model, prompt)
}

func NewRAG(cfg RAGConfig) (*RAG, error) {
	return pipelines.NewRAG(cfg)
}

func NewServer(cfg ServerConfig) (*Server, error) {
	return server.New(cfg)
}
