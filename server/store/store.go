// Package store persists chat request traces.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SourceInfo cites a document used for an answer. Score is nil when the
// similarity was undefined.
type SourceInfo struct {
	File  string   `json:"file"`
	Score *float64 `json:"score"`
}

// TraceInfo represents one recorded chat request
type TraceInfo struct {
	TraceID           string       `json:"trace_id"`
	Timestamp         int64        `json:"timestamp"`
	Input             string       `json:"input"`
	Output            string       `json:"output"`
	Sources           []SourceInfo `json:"sources"`
	TotalElapsedMs    int64        `json:"total_elapsed_ms"`
	TotalInputTokens  int          `json:"total_input_tokens"`
	TotalOutputTokens int          `json:"total_output_tokens"`
	Status            string       `json:"status"`
	Error             string       `json:"error,omitempty"`
	Spans             []SpanInfo   `json:"spans,omitempty"`
}

// SpanInfo represents one stage within a trace
type SpanInfo struct {
	SpanID       string `json:"span_id"`
	TraceID      string `json:"trace_id"`
	Stage        string `json:"stage"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// MetricsSummary contains aggregated metrics
type MetricsSummary struct {
	TotalTraces       int     `json:"total_traces"`
	ErrorCount        int     `json:"error_count"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}

// TraceStore defines the interface for trace persistence
type TraceStore interface {
	Add(ctx context.Context, t TraceInfo) error
	Get(ctx context.Context, id string) (TraceInfo, error)
	List(ctx context.Context) ([]TraceInfo, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (MetricsSummary, error)
	Close() error
}
