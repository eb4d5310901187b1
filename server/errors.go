package server

import (
	"errors"
	"net/http"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/vector"
)

// Client-facing error messages.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgMessageRequired  = "Message is required"
	msgInvalidBody      = "Invalid request body"
	msgMissingAPIKey    = "OpenAI API key not configured"
	msgStoreNotFound    = "Vector store not found. Please run reindex."
	msgGenerationFailed = "Failed to generate response"
	msgInternal         = "Internal server error"
	msgTraceNotFound    = "Trace not found"
)

// classify maps a chat failure to its status and client message. Detail
// beyond the message is only logged.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrEmptyQuestion):
		return http.StatusBadRequest, msgMessageRequired
	case errors.Is(err, core.ErrMissingAPIKey):
		return http.StatusInternalServerError, msgMissingAPIKey
	case errors.Is(err, vector.ErrStoreNotFound):
		return http.StatusInternalServerError, msgStoreNotFound
	case errors.Is(err, answer.ErrGeneration):
		return http.StatusInternalServerError, msgGenerationFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
