package vector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hubenschmidt/docchat/internal/jsonx"
)

// DefaultTable is the pgvector table searched when none is configured.
const DefaultTable = "documents"

// PgVectorStore delegates similarity search to PostgreSQL with pgvector.
// The table is maintained by the indexing job; this store only reads it.
// Expected columns: id TEXT, content TEXT, embedding vector(D), metadata JSONB.
type PgVectorStore struct {
	db    *sql.DB
	query string
}

// NewPgVectorStore connects to dsn and prepares searches against table.
func NewPgVectorStore(dsn, table string) (*PgVectorStore, error) {
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newPgVectorStoreWithDB(db, table), nil
}

func newPgVectorStoreWithDB(db *sql.DB, table string) *PgVectorStore {
	if table == "" {
		table = DefaultTable
	}
	return &PgVectorStore{db: db, query: searchQuery(table)}
}

func searchQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return fmt.Sprintf(`
		SELECT id, content, embedding::text, metadata, 1 - (embedding <=> $1::vector) AS score
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, ident)
}

// Ready pings the database.
func (s *PgVectorStore) Ready(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}
	return nil
}

// Search finds documents similar to the given embedding. Scores come from
// pgvector's cosine distance operator.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	rows, err := s.db.QueryContext(ctx, s.query, formatEmbedding(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var doc Document
		var embeddingStr string
		var metadataBytes []byte
		var score float64

		if err := rows.Scan(&doc.ID, &doc.Content, &embeddingStr, &metadataBytes, &score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		doc.Embedding, err = parseEmbedding(embeddingStr)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if len(metadataBytes) > 0 {
			if err := jsonx.Unmarshal(metadataBytes, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("document %s: decode metadata: %w", doc.ID, err)
			}
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    score,
		})
	}

	return results, rows.Err()
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding converts a float64 slice to pgvector format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseEmbedding converts pgvector format back to float64 slice.
func parseEmbedding(s string) ([]float64, error) {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	result := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse embedding component %d: %w", i, err)
		}
		result[i] = v
	}
	return result, nil
}
