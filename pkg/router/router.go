// Package router turns raw chat input into a normalized task by detecting
// its language and intent with keyword rules.
package router

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// TaskSource tags tasks produced from chat input.
const TaskSource = "chat_interface"

// Router classifies chat input.
type Router struct {
	rules  *RuleSet
	logger *zap.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRules replaces the default keyword rules.
func WithRules(rules *RuleSet) Option {
	return func(r *Router) {
		if rules != nil {
			r.rules = rules
		}
	}
}

// New creates a router with the default command and intent keywords.
func New(opts ...Option) *Router {
	r := &Router{
		rules:  NewRuleSet(DefaultCommandTriggers(), DefaultIntentTriggers()),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify decides the intent of text. Commands are checked before intent
// keywords; text matching neither is chat.
func (r *Router) Classify(text string) Decision {
	if intent, ok := r.rules.MatchCommand(text); ok {
		return Decision{Intent: intent, Confidence: CommandConfidence, IsCommand: true}
	}

	candidates := r.rules.Candidates(text)
	if len(candidates) == 0 {
		return Decision{Intent: schema.IntentChat, Confidence: DefaultConfidence}
	}

	top := candidates[0]
	return Decision{
		Intent:     top.Intent,
		Confidence: KeywordConfidence,
		Matched:    top.Triggers[0],
		Candidates: candidates,
	}
}

// Detect normalizes text into a task.
func (r *Router) Detect(text string) schema.Task {
	language := DetectLanguage(text)
	decision := r.Classify(text)

	r.logger.Debug("input classified",
		zap.String("intent", string(decision.Intent)),
		zap.Float64("confidence", decision.Confidence),
		zap.String("language", string(language)),
		zap.String("matched", decision.Matched),
		zap.Int("candidates", len(decision.Candidates)))

	return schema.Task{
		Text:       strings.TrimSpace(text),
		Language:   language,
		Intent:     decision.Intent,
		Confidence: decision.Confidence,
		Source:     TaskSource,
	}
}
