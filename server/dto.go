package server

import (
	"math"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/server/store"
)

// Re-export types from store package
type (
	SourceInfo     = store.SourceInfo
	TraceInfo      = store.TraceInfo
	SpanInfo       = store.SpanInfo
	MetricsSummary = store.MetricsSummary
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []SourceInfo `json:"sources"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TraceListResponse struct {
	Traces []TraceInfo `json:"traces"`
}

type TraceDetailResponse struct {
	Trace TraceInfo  `json:"trace"`
	Spans []SpanInfo `json:"spans"`
}

// toSourceInfo converts cited sources for the wire. An undefined similarity
// (NaN) is sent as null since JSON has no NaN.
func toSourceInfo(sources []answer.Source) []SourceInfo {
	out := make([]SourceInfo, len(sources))
	for i, src := range sources {
		out[i] = SourceInfo{File: src.File}
		if !math.IsNaN(src.Score) && !math.IsInf(src.Score, 0) {
			score := src.Score
			out[i].Score = &score
		}
	}
	return out
}
