package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingAPIKey = errors.New("OpenAI API key not configured")
	ErrLLMRequest    = errors.New("LLM request failed")
	ErrEmptyQuestion = errors.New("question is empty")
)

// OpError records the pipeline step that failed.
type OpError struct {
	Op      string
	Err     error
	Context map[string]any
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func NewOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}

func WithContext(err *OpError, key string, val any) *OpError {
	if err.Context == nil {
		err.Context = make(map[string]any)
	}
	err.Context[key] = val
	return err
}
