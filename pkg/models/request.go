package models

import "strings"

// Request is a single "answer this prompt" request. It is immutable once
// issued; the gateway never mutates it.
type Request struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// NormalizedPrompt returns the prompt with surrounding whitespace stripped.
// Cache keys and validation both operate on the normalized form, so two
// requests differing only in leading/trailing whitespace share a cache entry.
func (r Request) NormalizedPrompt() string {
	return strings.TrimSpace(r.Prompt)
}

// Source identifies where an answer came from.
type Source string

const (
	// SourceLive is a fresh answer from the backend.
	SourceLive Source = "live"
	// SourceCache is a previously stored backend answer.
	SourceCache Source = "cache"
	// SourceFallback is a locally produced answer returned when the
	// backend could not be reached.
	SourceFallback Source = "fallback"
)

// Answer is the result of a gateway request. Source lets callers render
// live, cached, and fallback answers distinctly.
type Answer struct {
	RequestID string `json:"request_id"`
	Text      string `json:"answer"`
	Source    Source `json:"source"`
	Model     string `json:"model,omitempty"`
	Attempts  int    `json:"attempts"`
}
