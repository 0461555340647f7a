// Package registry discovers which candidate models a backend serves and
// publishes the result as immutable snapshots.
package registry

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zen-systems/orchestrator/pkg/adapter"
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/schema"
	"github.com/zen-systems/orchestrator/pkg/selector"
)

// Discovery sources recorded on a snapshot.
const (
	SourceNone  = "none"
	SourceProbe = "probe"
	SourceList  = "list"
)

// ProbeResult is the outcome of probing one candidate.
type ProbeResult struct {
	Model    string
	OK       bool
	Duration time.Duration
	Err      string
}

// Snapshot is one discovery result. It is never mutated once published.
type Snapshot struct {
	Available    []string
	Priority     map[schema.Category]string
	Degraded     bool
	Source       string
	Probes       []ProbeResult
	DiscoveredAt time.Time
}

// Model returns the cached selection for category.
func (s *Snapshot) Model(category schema.Category) (string, bool) {
	if s == nil || s.Priority == nil {
		return "", false
	}
	m, ok := s.Priority[category]
	return m, ok
}

func (s *Snapshot) degradedCopy() *Snapshot {
	next := *s
	next.Degraded = true
	return &next
}

// Registry holds the current snapshot for one backend.
type Registry struct {
	adapter      adapter.Adapter
	selector     *selector.Selector
	candidates   []string
	probeTimeout time.Duration
	listTimeout  time.Duration
	logger       *zap.Logger
	current      atomic.Pointer[Snapshot]
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConfig applies candidates and timeouts from cfg.
func WithConfig(cfg config.RegistryConfig) Option {
	return func(r *Registry) {
		if len(cfg.Candidates) > 0 {
			r.candidates = append([]string(nil), cfg.Candidates...)
		}
		if cfg.ProbeTimeoutMs > 0 {
			r.probeTimeout = cfg.ProbeTimeout()
		}
		if cfg.ListTimeoutMs > 0 {
			r.listTimeout = cfg.ListTimeout()
		}
	}
}

// WithCandidates sets the models to probe, in priority order.
func WithCandidates(models ...string) Option {
	return func(r *Registry) {
		r.candidates = append([]string(nil), models...)
	}
}

// WithTimeouts sets the probe and list deadlines.
func WithTimeouts(probe, list time.Duration) Option {
	return func(r *Registry) {
		r.probeTimeout = probe
		r.listTimeout = list
	}
}

// New creates a registry. Until Discover runs, the current snapshot is degraded.
func New(a adapter.Adapter, sel *selector.Selector, opts ...Option) *Registry {
	if sel == nil {
		sel = selector.New()
	}
	r := &Registry{
		adapter:      a,
		selector:     sel,
		candidates:   config.DefaultCandidates(),
		probeTimeout: 3 * time.Second,
		listTimeout:  5 * time.Second,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(&Snapshot{Degraded: true, Source: SourceNone})
	return r
}

// Snapshot returns the current snapshot.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Selector returns the selector used to build priorities.
func (r *Registry) Selector() *selector.Selector {
	return r.selector
}

// Discover probes every candidate, falls back to listing the backend when
// none is confirmed, and installs the resulting snapshot. Backend failures
// only degrade the snapshot; the error is reserved for ctx cancellation.
func (r *Registry) Discover(ctx context.Context) (*Snapshot, error) {
	probes := r.probe(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Source:       SourceProbe,
		Probes:       probes,
		DiscoveredAt: time.Now(),
	}
	for _, p := range probes {
		if p.OK {
			snap.Available = append(snap.Available, p.Model)
		}
	}

	if len(snap.Available) == 0 {
		snap.Source = SourceList
		snap.Available = r.list(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if len(snap.Available) == 0 {
		snap.Degraded = true
		snap.Source = SourceNone
		r.logger.Warn("no models available, running degraded", zap.String("backend", r.adapter.Name()))
	} else {
		snap.Priority = r.selector.Priorities(snap.Available)
		r.logger.Info("models discovered",
			zap.String("backend", r.adapter.Name()),
			zap.String("source", snap.Source),
			zap.Strings("available", snap.Available))
	}

	r.current.Store(snap)
	return snap, nil
}

// MarkDegraded installs a degraded copy of the current snapshot. Only a
// later Discover clears the flag.
func (r *Registry) MarkDegraded() {
	for {
		cur := r.current.Load()
		if cur.Degraded {
			return
		}
		if r.current.CompareAndSwap(cur, cur.degradedCopy()) {
			r.logger.Warn("backend unreachable, registry marked degraded", zap.String("backend", r.adapter.Name()))
			return
		}
	}
}

func (r *Registry) probe(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, len(r.candidates))

	var g errgroup.Group
	for i, model := range r.candidates {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
			defer cancel()

			start := time.Now()
			err := r.adapter.Show(pctx, model)
			results[i] = ProbeResult{Model: model, OK: err == nil, Duration: time.Since(start)}
			if err != nil {
				results[i].Err = err.Error()
				r.logger.Debug("model probe failed",
					zap.String("model", model),
					zap.String("outcome", adapter.Classify(err).String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Registry) list(ctx context.Context) []string {
	lctx, cancel := context.WithTimeout(ctx, r.listTimeout)
	defer cancel()

	models, err := r.adapter.List(lctx)
	if err != nil {
		r.logger.Warn("model list failed", zap.String("backend", r.adapter.Name()), zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{}, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
