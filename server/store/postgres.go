package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hubenschmidt/docchat/server/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresTraceStore implements TraceStore using PostgreSQL
type PostgresTraceStore struct {
	db *sql.DB
}

func NewPostgresTraceStore(dsn string) (*PostgresTraceStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runPostgresMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newPostgresTraceStoreWithDB(db), nil
}

func newPostgresTraceStoreWithDB(db *sql.DB) *PostgresTraceStore {
	return &PostgresTraceStore{db: db}
}

func runPostgresMigrations(ctx context.Context, db *sql.DB) error {
	data, err := migrations.Postgres.ReadFile("postgres/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.ExecContext(ctx, string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *PostgresTraceStore) Add(ctx context.Context, t TraceInfo) error {
	sources, spans, err := encodeTrace(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO traces (`+traceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (trace_id) DO UPDATE SET
			timestamp = EXCLUDED.timestamp,
			input = EXCLUDED.input,
			output = EXCLUDED.output,
			sources = EXCLUDED.sources,
			total_elapsed_ms = EXCLUDED.total_elapsed_ms,
			total_input_tokens = EXCLUDED.total_input_tokens,
			total_output_tokens = EXCLUDED.total_output_tokens,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			spans = EXCLUDED.spans`,
		t.TraceID, t.Timestamp, t.Input, t.Output, sources,
		t.TotalElapsedMs, t.TotalInputTokens, t.TotalOutputTokens,
		t.Status, t.Error, spans,
	)
	if err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	return nil
}

func (s *PostgresTraceStore) Get(ctx context.Context, id string) (TraceInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+traceColumns+` FROM traces WHERE trace_id = $1`, id)
	t, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("query trace: %w", err)
	}
	return t, nil
}

func (s *PostgresTraceStore) List(ctx context.Context) ([]TraceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+traceColumns+` FROM traces ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	var traces []TraceInfo
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		traces = append(traces, t)
	}
	return traces, rows.Err()
}

func (s *PostgresTraceStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM traces WHERE trace_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trace: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresTraceStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var m MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COALESCE(SUM(total_input_tokens), 0),
			COALESCE(SUM(total_output_tokens), 0),
			COALESCE(AVG(total_elapsed_ms), 0)
		FROM traces`, StatusError).Scan(
		&m.TotalTraces, &m.ErrorCount, &m.TotalInputTokens,
		&m.TotalOutputTokens, &m.AvgLatencyMs,
	)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	return m, nil
}

func (s *PostgresTraceStore) Close() error {
	return s.db.Close()
}
