package store

import "context"

// NoopTraceStore discards traces. Used when no trace DSN is configured.
type NoopTraceStore struct{}

func NewNoopTraceStore() *NoopTraceStore {
	return &NoopTraceStore{}
}

func (NoopTraceStore) Add(ctx context.Context, t TraceInfo) error { return nil }

func (NoopTraceStore) Get(ctx context.Context, id string) (TraceInfo, error) {
	return TraceInfo{}, ErrNotFound
}

func (NoopTraceStore) List(ctx context.Context) ([]TraceInfo, error) { return nil, nil }

func (NoopTraceStore) Delete(ctx context.Context, id string) error { return nil }

func (NoopTraceStore) Summary(ctx context.Context) (MetricsSummary, error) {
	return MetricsSummary{}, nil
}

func (NoopTraceStore) Close() error { return nil }
