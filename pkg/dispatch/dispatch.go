// Package dispatch sends a plan to the selected model, checks the answer
// against the quality gate and falls back to a backup model or a
// synthesized placeholder.
package dispatch

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/adapter"
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/gate"
	"github.com/zen-systems/orchestrator/pkg/prompt"
	"github.com/zen-systems/orchestrator/pkg/registry"
	"github.com/zen-systems/orchestrator/pkg/schema"
	"github.com/zen-systems/orchestrator/pkg/textutil"
)

// Dispatcher runs plans against one backend.
type Dispatcher struct {
	adapter  adapter.Adapter
	registry *registry.Registry
	gate     gate.Gate
	cfg      config.DispatchConfig
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithGate replaces the adequacy gate.
func WithGate(g gate.Gate) Option {
	return func(d *Dispatcher) {
		if g != nil {
			d.gate = g
		}
	}
}

// WithConfig sets budgets, the backup map and sampling options.
func WithConfig(cfg config.DispatchConfig) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// New creates a dispatcher over a backend and its registry.
func New(a adapter.Adapter, reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		adapter:  a,
		registry: reg,
		gate:     gate.NewAdequacyGate(),
		cfg:      config.DefaultDispatchConfig(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch produces exactly one envelope for plan. Backend failures and
// panics are turned into placeholder envelopes; no error reaches the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, plan schema.Plan) (env schema.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", zap.Any("panic", r))
			env = d.synthesize(plan, schema.ModeMockFallback, schema.ModelMockFallback, nil)
		}
	}()

	category := plan.Category
	if category == "" {
		category = schema.CategoryChat
	}
	category = schema.ParseCategory(string(category))

	snap := d.registry.Snapshot()
	if snap.Degraded {
		d.logger.Debug("registry degraded, synthesizing response")
		return d.synthesize(plan, schema.ModeMock, schema.ModelMock, nil)
	}

	model := d.selectModel(snap, category)
	text := prompt.Build(plan, model)

	res, report := d.callWithPolicy(ctx, model, text, category, false)
	attempts := []schema.CallReport{report}
	if !res.OK() {
		d.recordFailure(res)
		return d.synthesize(plan, schema.ModeMockFallback, schema.ModelMockFallback, attempts)
	}

	response := textutil.TrimIfTruncated(res.Text)
	verdict := d.gate.Evaluate(response, category)
	if verdict.Passed {
		return d.real(model, response, attempts)
	}

	backup := d.cfg.BackupFor(model)
	if backup == "" || backup == model {
		d.logger.Info("response below quality bar, no distinct backup",
			zap.String("model", model), zap.Int("score", verdict.Score))
		return d.real(model, response, attempts)
	}

	d.logger.Warn("response below quality bar, trying backup",
		zap.String("model", model),
		zap.String("backup", backup),
		zap.Int("score", verdict.Score))

	res, report = d.callWithPolicy(ctx, backup, text, category, true)
	attempts = append(attempts, report)
	if !res.OK() {
		d.recordFailure(res)
		return d.synthesize(plan, schema.ModeMockFallback, schema.ModelMockFallback, attempts)
	}
	return d.real(backup, textutil.TrimIfTruncated(res.Text), attempts)
}

func (d *Dispatcher) selectModel(snap *registry.Snapshot, category schema.Category) string {
	if model, ok := snap.Model(category); ok && model != "" {
		return model
	}
	return d.registry.Selector().Select(category, snap.Available)
}

func (d *Dispatcher) recordFailure(res adapter.Result) {
	d.logger.Error("model call failed",
		zap.String("model", res.Model),
		zap.String("outcome", res.Outcome.String()),
		zap.Int("status", res.Status),
		zap.Duration("duration", res.Duration),
		zap.Error(res.Err))

	if res.Outcome == adapter.OutcomeUnreachable {
		d.registry.MarkDegraded()
	}
}

func (d *Dispatcher) real(model, response string, attempts []schema.CallReport) schema.Envelope {
	quality := schema.QualityMedium
	if utf8.RuneCountInString(response) > d.cfg.HighQualityLength {
		quality = schema.QualityHigh
	}
	return schema.Envelope{
		ID:        uuid.NewString(),
		Model:     model,
		Response:  response,
		Mode:      schema.ModeReal,
		Quality:   quality,
		Attempts:  attempts,
		CreatedAt: d.now(),
	}
}

func (d *Dispatcher) synthesize(plan schema.Plan, mode schema.Mode, model string, attempts []schema.CallReport) schema.Envelope {
	return schema.Envelope{
		ID:        uuid.NewString(),
		Model:     model,
		Response:  Placeholder(plan),
		Mode:      mode,
		Quality:   schema.QualityHigh,
		Attempts:  attempts,
		CreatedAt: d.now(),
	}
}
