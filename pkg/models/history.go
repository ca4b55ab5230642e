package models

import "time"

// HistoryRecord is one answered request as recorded in the call history.
type HistoryRecord struct {
	RequestID  string    `json:"request_id"`
	PromptHash string    `json:"prompt_hash"`
	Model      string    `json:"model"`
	Source     Source    `json:"source"`
	Attempts   int       `json:"attempts"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistorySummary aggregates answered requests per source.
type HistorySummary struct {
	Source   Source `json:"source"`
	Requests int64  `json:"requests"`
	Attempts int64  `json:"attempts"`
}
