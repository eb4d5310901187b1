package store

import (
	"fmt"
	"strings"
)

// NewTraceStore creates a trace store based on the DSN.
// - Empty DSN: tracing disabled
// - postgres:// or postgresql://: PostgreSQL
// - Anything else: SQLite at the specified path
func NewTraceStore(dsn string) (TraceStore, error) {
	if dsn == "" {
		return NewNoopTraceStore(), nil
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		ts, err := NewPostgresTraceStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return ts, nil
	}

	return NewSQLiteTraceStore(dsn)
}
