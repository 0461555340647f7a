package router

import "github.com/zen-systems/orchestrator/pkg/schema"

// Confidence levels assigned by the keyword classifier.
const (
	CommandConfidence = 0.9
	KeywordConfidence = 0.8
	DefaultConfidence = 0.5
)

// Candidate captures an intent whose triggers matched the input.
type Candidate struct {
	Intent   schema.Intent `json:"intent"`
	Score    int           `json:"score"`
	Triggers []string      `json:"triggers,omitempty"`
}

// Decision captures intent classification details.
type Decision struct {
	Intent     schema.Intent `json:"intent"`
	Confidence float64       `json:"confidence"`
	IsCommand  bool          `json:"is_command"`
	Matched    string        `json:"matched_keyword,omitempty"`
	Candidates []Candidate   `json:"candidates,omitempty"`
}
