// Package vector provides document records, cosine ranking and the stores the
// chat endpoint searches.
package vector

import (
	"context"
	"errors"
)

var (
	// ErrStoreNotFound is returned when the configured vector store does not exist.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrInvalidStore is returned when stored records fail validation.
	ErrInvalidStore = errors.New("invalid vector store")

	// ErrDimensionMismatch is returned when two compared vectors differ in length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Metadata describes where a document chunk came from.
type Metadata struct {
	Filename string `json:"filename" validate:"required"`
}

// Document is one indexed chunk with its embedding.
type Document struct {
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"document" validate:"required"`
	Embedding []float64 `json:"embedding" validate:"required,min=1"`
	Metadata  Metadata  `json:"metadata"`
}

// SearchResult represents a search result with similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"` // cosine similarity, NaN for zero-magnitude vectors
}

// Store provides read-only similarity search over an externally maintained collection.
type Store interface {
	// Ready reports whether the backing collection is reachable.
	Ready(ctx context.Context) error

	// Search finds the topK documents most similar to the given embedding.
	Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error)

	// Close releases resources.
	Close() error
}
