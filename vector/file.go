package vector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hubenschmidt/docchat/internal/jsonx"
)

// DefaultStorePath is where the reindex job writes the JSON store,
// relative to the working directory.
var DefaultStorePath = filepath.Join(".system", "vector-data", "vector_store.json")

// FileStore searches a JSON array of documents on disk. The file is read on
// every search so a reindex is picked up without a restart.
type FileStore struct {
	path string
}

// NewFileStore creates a store reading from path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultStorePath
	}
	return &FileStore{path: path}
}

// Path returns the file the store reads.
func (s *FileStore) Path() string {
	return s.path
}

// Ready reports ErrStoreNotFound when the file is missing.
func (s *FileStore) Ready(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
		}
		return fmt.Errorf("stat vector store: %w", err)
	}
	return nil
}

// Search loads the file and ranks its documents against embedding.
func (s *FileStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	docs, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	return Rank(embedding, docs, topK)
}

// Close is a no-op; the file is not held open between searches.
func (s *FileStore) Close() error {
	return nil
}

// LoadFile reads and validates a JSON vector store.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("read vector store: %w", err)
	}

	var docs []Document
	if err := jsonx.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidStore, path, err)
	}

	if err := ValidateDocuments(docs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return docs, nil
}
