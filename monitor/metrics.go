package monitor

import "time"

// Stage names one external step of a chat request.
type Stage string

const (
	StageEmbed    Stage = "embed"
	StageSearch   Stage = "search"
	StageGenerate Stage = "generate"
)

type StageMetrics struct {
	Stage     Stage         `json:"stage"`
	TokensIn  int           `json:"tokens_in"`
	TokensOut int           `json:"tokens_out"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

type RequestMetrics struct {
	RequestID      string         `json:"request_id"`
	TotalTokensIn  int            `json:"total_tokens_in"`
	TotalTokensOut int            `json:"total_tokens_out"`
	TotalDuration  time.Duration  `json:"total_duration"`
	Stages         []StageMetrics `json:"stages"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
}
