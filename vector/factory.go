package vector

import "fmt"

const (
	BackendFile     = "file"
	BackendPgVector = "pgvector"
)

// NewStore opens the store for backend.
// - file: location is the JSON file path (DefaultStorePath when empty)
// - pgvector: location is a postgres:// DSN, table the searched table
func NewStore(backend, location, table string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(location), nil
	case BackendPgVector:
		if location == "" {
			return nil, fmt.Errorf("pgvector backend requires a DSN")
		}
		s, err := NewPgVectorStore(location, table)
		if err != nil {
			return nil, fmt.Errorf("pgvector: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", backend)
	}
}
