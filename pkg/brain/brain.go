// Package brain wires detection, planning, dispatch and archiving into a
// single request flow.
package brain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/archive"
	"github.com/zen-systems/orchestrator/pkg/dispatch"
	"github.com/zen-systems/orchestrator/pkg/planner"
	"github.com/zen-systems/orchestrator/pkg/router"
	"github.com/zen-systems/orchestrator/pkg/schema"
)

// Result is the outcome of one processed request.
type Result struct {
	Task        schema.Task     `json:"task"`
	Plan        schema.Plan     `json:"plan"`
	Envelope    schema.Envelope `json:"envelope"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// Brain runs requests end to end.
type Brain struct {
	router     *router.Router
	planner    *planner.Planner
	dispatcher *dispatch.Dispatcher
	archive    *archive.Store
	logger     *zap.Logger
}

// Option configures a Brain.
type Option func(*Brain)

// WithLogger sets the brain logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Brain) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRouter replaces the default keyword router.
func WithRouter(r *router.Router) Option {
	return func(b *Brain) {
		if r != nil {
			b.router = r
		}
	}
}

// WithArchive enables archiving of processed requests.
func WithArchive(store *archive.Store) Option {
	return func(b *Brain) {
		b.archive = store
	}
}

// New creates a brain over a planner and dispatcher.
func New(p *planner.Planner, d *dispatch.Dispatcher, opts ...Option) *Brain {
	b := &Brain{
		router:     router.New(),
		planner:    p,
		dispatcher: d,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Detect classifies raw input into a task without dispatching it.
func (b *Brain) Detect(text string) schema.Task {
	return b.router.Detect(text)
}

// Process detects, plans, dispatches and archives text.
func (b *Brain) Process(ctx context.Context, text string) Result {
	return b.Handle(ctx, b.Detect(text))
}

// Handle plans and dispatches an already detected task. Archive failures
// are logged and never change the result.
func (b *Brain) Handle(ctx context.Context, task schema.Task) Result {
	start := time.Now()
	b.logger.Info("task received",
		zap.String("intent", string(task.Intent)),
		zap.String("language", string(task.Language)))

	plan := b.planner.Analyze(task)
	env := b.dispatcher.Dispatch(ctx, plan)

	res := Result{Task: task, Plan: plan, Envelope: env}
	if b.archive != nil {
		rec, err := b.archive.Save(task, plan, env)
		if err != nil {
			b.logger.Error("archive save failed", zap.Error(err))
		} else {
			res.Fingerprint = rec.Fingerprint
		}
	}
	res.Elapsed = time.Since(start)

	b.logger.Info("task completed",
		zap.String("model", env.Model),
		zap.String("mode", string(env.Mode)),
		zap.Duration("elapsed", res.Elapsed))
	return res
}
