package vector

import "context"

// MemoryStore ranks a fixed, in-memory collection. Useful for tests and for
// callers that load records themselves.
type MemoryStore struct {
	docs []Document
}

// NewMemoryStore creates a store over docs. The slice is not copied and must
// not be modified afterwards.
func NewMemoryStore(docs []Document) *MemoryStore {
	return &MemoryStore{docs: docs}
}

// Ready always succeeds for an in-memory store.
func (s *MemoryStore) Ready(ctx context.Context) error {
	return nil
}

// Search finds documents similar to the given embedding using brute-force cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	return Rank(embedding, s.docs, topK)
}

// Close is a no-op for in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Count returns the number of documents in the store.
func (s *MemoryStore) Count() int {
	return len(s.docs)
}
