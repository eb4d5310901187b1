package monitor

import (
	"sync"
	"time"
)

type Collector interface {
	Record(metrics StageMetrics)
	Flush() RequestMetrics
}

// InMemoryCollector keeps the stages of one request in the order they ran.
type InMemoryCollector struct {
	mu        sync.Mutex
	requestID string
	stages    []StageMetrics
	startTime time.Time
}

func NewInMemoryCollector(requestID string) *InMemoryCollector {
	return &InMemoryCollector{
		requestID: requestID,
		startTime: time.Now(),
	}
}

func (c *InMemoryCollector) Record(metrics StageMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, metrics)
}

func (c *InMemoryCollector) Flush() RequestMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	stages := make([]StageMetrics, len(c.stages))
	copy(stages, c.stages)

	var tokensIn, tokensOut int
	for _, s := range stages {
		tokensIn += s.TokensIn
		tokensOut += s.TokensOut
	}

	end := time.Now()
	return RequestMetrics{
		RequestID:      c.requestID,
		TotalTokensIn:  tokensIn,
		TotalTokensOut: tokensOut,
		TotalDuration:  end.Sub(c.startTime),
		Stages:         stages,
		StartTime:      c.startTime,
		EndTime:        end,
	}
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(metrics StageMetrics) {}

func (c *NoOpCollector) Flush() RequestMetrics {
	return RequestMetrics{}
}

// Observe records stage as started at start and finished now.
func Observe(c Collector, stage Stage, start time.Time, tokensIn, tokensOut int, err error) {
	m := StageMetrics{
		Stage:     stage,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		StartTime: start,
		Duration:  time.Since(start),
		Success:   err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	c.Record(m)
}
