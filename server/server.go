// Package server exposes the document chat endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/monitor"
	"github.com/hubenschmidt/docchat/server/store"
)

// Answerer answers a question from indexed documents.
type Answerer interface {
	Answer(ctx context.Context, question string, col monitor.Collector) (*answer.Answer, error)
}

// Config configures a new Server instance.
type Config struct {
	Pipeline Answerer
	APIKey   string
	Traces   store.TraceStore // Optional: defaults to a store that discards traces
	Logger   *zap.Logger
}

// Server serves /api/chat plus trace inspection routes.
type Server struct {
	pipeline Answerer
	apiKey   string
	traces   store.TraceStore
	logger   *zap.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("server: pipeline is required")
	}

	traces := cfg.Traces
	if traces == nil {
		traces = store.NewNoopTraceStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		pipeline: cfg.Pipeline,
		apiKey:   cfg.APIKey,
		traces:   traces,
		logger:   logger,
	}, nil
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	if err := s.traces.Close(); err != nil {
		return fmt.Errorf("close trace store: %w", err)
	}
	return nil
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Method checks happen in the handler so non-POST gets a JSON 405.
	mux.HandleFunc("/api/chat", s.handleChat)

	mux.HandleFunc("GET /api/traces", s.handleTraceList)
	mux.HandleFunc("GET /api/traces/{id}", s.handleTraceGet)
	mux.HandleFunc("DELETE /api/traces/{id}", s.handleTraceDelete)
	mux.HandleFunc("GET /api/metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT")
		h.Set("Access-Control-Allow-Headers", "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
