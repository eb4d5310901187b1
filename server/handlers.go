package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/internal/jsonx"
	"github.com/hubenschmidt/docchat/monitor"
	"github.com/hubenschmidt/docchat/server/store"
)

const (
	maxRequestBody = 1 << 20
	traceTimeout   = 5 * time.Second
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.logger.Debug("read chat request", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	// An empty body carries no message.
	var req ChatRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := jsonx.Unmarshal(body, &req); err != nil {
			s.logger.Debug("decode chat request", zap.Error(err))
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, msgMessageRequired)
		return
	}

	traceID := uuid.NewString()
	logger := s.logger.With(zap.String("trace_id", traceID))
	w.Header().Set("X-Trace-Id", traceID)

	col := monitor.NewInMemoryCollector(traceID)
	ans, err := s.answer(r.Context(), req.Message, col)
	s.recordTrace(r.Context(), req.Message, ans, err, col.Flush(), logger)

	if err != nil {
		status, msg := classify(err)
		logger.Error("chat request failed", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}

	logger.Info("chat request answered",
		zap.Int("sources", len(ans.Sources)),
		zap.Int("prompt_tokens", ans.Usage.PromptTokens),
		zap.Int("completion_tokens", ans.Usage.CompletionTokens),
	)
	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:  ans.Text,
		Sources: toSourceInfo(ans.Sources),
	})
}

func (s *Server) answer(ctx context.Context, question string, col monitor.Collector) (*answer.Answer, error) {
	if s.apiKey == "" {
		return nil, core.ErrMissingAPIKey
	}
	return s.pipeline.Answer(ctx, question, col)
}

// recordTrace stores the outcome of one chat request. Failures are logged and
// never change the response.
func (s *Server) recordTrace(ctx context.Context, input string, ans *answer.Answer, err error, m monitor.RequestMetrics, logger *zap.Logger) {
	t := TraceInfo{
		TraceID:           m.RequestID,
		Timestamp:         m.StartTime.UnixMilli(),
		Input:             input,
		TotalElapsedMs:    m.TotalDuration.Milliseconds(),
		TotalInputTokens:  m.TotalTokensIn,
		TotalOutputTokens: m.TotalTokensOut,
		Status:            store.StatusSuccess,
		Spans:             toSpans(m),
	}
	if ans != nil {
		t.Output = ans.Text
		t.Sources = toSourceInfo(ans.Sources)
	}
	if err != nil {
		t.Status = store.StatusError
		t.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), traceTimeout)
	defer cancel()

	if err := s.traces.Add(ctx, t); err != nil {
		logger.Warn("record trace", zap.Error(err))
	}
}

func toSpans(m monitor.RequestMetrics) []SpanInfo {
	spans := make([]SpanInfo, len(m.Stages))
	for i, st := range m.Stages {
		status := store.StatusSuccess
		if !st.Success {
			status = store.StatusError
		}
		spans[i] = SpanInfo{
			SpanID:       uuid.NewString(),
			TraceID:      m.RequestID,
			Stage:        string(st.Stage),
			StartTime:    st.StartTime.UnixMilli(),
			EndTime:      st.StartTime.Add(st.Duration).UnixMilli(),
			InputTokens:  st.TokensIn,
			OutputTokens: st.TokensOut,
			Status:       status,
			Error:        st.Error,
		}
	}
	return spans
}

func (s *Server) handleTraceList(w http.ResponseWriter, r *http.Request) {
	traces, err := s.traces.List(r.Context())
	if err != nil {
		s.logger.Error("list traces", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if traces == nil {
		traces = []TraceInfo{}
	}
	writeJSON(w, http.StatusOK, TraceListResponse{Traces: traces})
}

func (s *Server) handleTraceGet(w http.ResponseWriter, r *http.Request) {
	trace, err := s.traces.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgTraceNotFound)
		return
	}
	if err != nil {
		s.logger.Error("get trace", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, TraceDetailResponse{Trace: trace, Spans: trace.Spans})
}

func (s *Server) handleTraceDelete(w http.ResponseWriter, r *http.Request) {
	err := s.traces.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgTraceNotFound)
		return
	}
	if err != nil {
		s.logger.Error("delete trace", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.traces.Summary(r.Context())
	if err != nil {
		s.logger.Error("metrics summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jsonx.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
