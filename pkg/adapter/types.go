package adapter

import (
	"strings"
	"time"
)

// Options are the sampling parameters sent with a generate call.
type Options struct {
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_output_tokens"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// DefaultOptions returns the sampling parameters used when none are configured.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.7,
		MaxTokens:     2048,
		TopP:          0.9,
		RepeatPenalty: 1.1,
	}
}

// Request is a single generate call.
type Request struct {
	Model   string
	Prompt  string
	Options Options
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Outcome classifies how a generate call ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeUnreachable
	OutcomeBackendError
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeBackendError:
		return "backend_error"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a generate call. Text is only meaningful when
// Outcome is OutcomeOK; Err is only set otherwise.
type Result struct {
	Outcome  Outcome
	Model    string
	Text     string
	Status   int
	Usage    *Usage
	Err      error
	Duration time.Duration
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Success builds a successful result with whitespace-trimmed text.
func Success(model, text string, usage *Usage) Result {
	return Result{
		Outcome: OutcomeOK,
		Model:   model,
		Text:    strings.TrimSpace(text),
		Usage:   usage,
	}
}

// Failure builds a failed result, classifying err into an Outcome.
func Failure(model string, err error) Result {
	r := Result{
		Outcome: Classify(err),
		Model:   model,
		Err:     err,
	}
	if r.Outcome == OutcomeOK {
		r.Outcome = OutcomeBackendError
	}
	r.Status = StatusOf(err)
	return r
}
