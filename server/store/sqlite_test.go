package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteTraceStore {
	t.Helper()
	s, err := NewSQLiteTraceStore(filepath.Join(t.TempDir(), "nested", "traces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func score(v float64) *float64 { return &v }

func TestSQLiteTraceRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	in := TraceInfo{
		TraceID:   "t1",
		Timestamp: 1000,
		Input:     "how long do refunds take?",
		Output:    "14 days",
		Sources: []SourceInfo{
			{File: "refunds.md", Score: score(0.9)},
			{File: "empty.md", Score: nil},
		},
		TotalElapsedMs:    120,
		TotalInputTokens:  50,
		TotalOutputTokens: 8,
		Status:            StatusSuccess,
		Spans: []SpanInfo{
			{SpanID: "s1", TraceID: "t1", Stage: "embed", StartTime: 1000, EndTime: 1010, InputTokens: 5, Status: StatusSuccess},
		},
	}
	require.NoError(t, s.Add(ctx, in))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSQLiteListNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, TraceInfo{TraceID: "old", Timestamp: 1, Status: StatusSuccess}))
	require.NoError(t, s.Add(ctx, TraceInfo{TraceID: "new", Timestamp: 2, Status: StatusSuccess}))

	traces, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "new", traces[0].TraceID)
	assert.Equal(t, "old", traces[1].TraceID)
	assert.Empty(t, traces[0].Sources)
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, TraceInfo{TraceID: "t1", Status: StatusSuccess}))
	require.NoError(t, s.Delete(ctx, "t1"))

	_, err := s.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "t1"), ErrNotFound)
}

func TestSQLiteSummary(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	empty, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, MetricsSummary{}, empty)

	require.NoError(t, s.Add(ctx, TraceInfo{TraceID: "a", TotalElapsedMs: 100, TotalInputTokens: 10, TotalOutputTokens: 2, Status: StatusSuccess}))
	require.NoError(t, s.Add(ctx, TraceInfo{TraceID: "b", TotalElapsedMs: 300, TotalInputTokens: 20, TotalOutputTokens: 0, Status: StatusError, Error: "upstream"}))

	m, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalTraces)
	assert.Equal(t, 1, m.ErrorCount)
	assert.Equal(t, 30, m.TotalInputTokens)
	assert.Equal(t, 2, m.TotalOutputTokens)
	assert.InDelta(t, 200.0, m.AvgLatencyMs, 1e-9)
}

func TestNewTraceStore(t *testing.T) {
	ts, err := NewTraceStore("")
	require.NoError(t, err)
	assert.IsType(t, &NoopTraceStore{}, ts)

	_, err = ts.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	ts, err = NewTraceStore(filepath.Join(t.TempDir(), "traces.db"))
	require.NoError(t, err)
	defer ts.Close()
	assert.IsType(t, &SQLiteTraceStore{}, ts)
}
