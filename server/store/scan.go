package store

import (
	"fmt"

	"github.com/hubenschmidt/docchat/internal/jsonx"
)

const traceColumns = `trace_id, timestamp, input, output, sources,
	total_elapsed_ms, total_input_tokens, total_output_tokens,
	status, error, spans`

type rowScanner interface {
	Scan(dest ...any) error
}

// encodeTrace returns the JSON columns of t. Nil slices are stored as [].
func encodeTrace(t TraceInfo) (sources, spans []byte, err error) {
	if t.Sources == nil {
		t.Sources = []SourceInfo{}
	}
	if t.Spans == nil {
		t.Spans = []SpanInfo{}
	}
	if sources, err = jsonx.Marshal(t.Sources); err != nil {
		return nil, nil, fmt.Errorf("marshal sources: %w", err)
	}
	if spans, err = jsonx.Marshal(t.Spans); err != nil {
		return nil, nil, fmt.Errorf("marshal spans: %w", err)
	}
	return sources, spans, nil
}

func scanTrace(row rowScanner) (TraceInfo, error) {
	var t TraceInfo
	var sourcesJSON, spansJSON []byte

	if err := row.Scan(
		&t.TraceID, &t.Timestamp, &t.Input, &t.Output, &sourcesJSON,
		&t.TotalElapsedMs, &t.TotalInputTokens, &t.TotalOutputTokens,
		&t.Status, &t.Error, &spansJSON,
	); err != nil {
		return t, err
	}

	if err := jsonx.Unmarshal(sourcesJSON, &t.Sources); err != nil {
		return t, fmt.Errorf("unmarshal sources: %w", err)
	}
	if err := jsonx.Unmarshal(spansJSON, &t.Spans); err != nil {
		return t, fmt.Errorf("unmarshal spans: %w", err)
	}
	return t, nil
}
