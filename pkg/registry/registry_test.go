package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zen-systems/orchestrator/pkg/adapter"
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/schema"
	"github.com/zen-systems/orchestrator/pkg/selector"
)

func TestMain(m *testing.M) {
	// opencensus, pulled in by the genai client, starts a worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// slowAdapter delays probes per model and blocks forever on models in hang.
type slowAdapter struct {
	*adapter.MockAdapter
	delays map[string]time.Duration
	hang   map[string]bool
}

func (a *slowAdapter) Show(ctx context.Context, model string) error {
	if a.hang[model] {
		<-ctx.Done()
		return ctx.Err()
	}
	select {
	case <-time.After(a.delays[model]):
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.MockAdapter.Show(ctx, model)
}

func TestNewIsDegradedUntilDiscover(t *testing.T) {
	r := New(adapter.NewMockAdapter("llama3:8b"), nil)
	snap := r.Snapshot()
	assert.True(t, snap.Degraded)
	assert.Empty(t, snap.Available)
	assert.Equal(t, SourceNone, snap.Source)
}

func TestDiscoverKeepsCandidateOrder(t *testing.T) {
	a := &slowAdapter{
		MockAdapter: adapter.NewMockAdapter("llama3:8b", "qwen2.5:14b", "mixtral:latest"),
		delays: map[string]time.Duration{
			"llama3:8b":      30 * time.Millisecond,
			"qwen2.5:14b":    1 * time.Millisecond,
			"mixtral:latest": 15 * time.Millisecond,
		},
	}
	r := New(a, nil, WithCandidates(config.DefaultCandidates()...))

	snap, err := r.Discover(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Degraded)
	assert.Equal(t, SourceProbe, snap.Source)
	assert.Equal(t, []string{"llama3:8b", "qwen2.5:14b", "mixtral:latest"}, snap.Available)
	require.Len(t, snap.Probes, 4)
	assert.Equal(t, "deepseek-coder:6.7b", snap.Probes[3].Model)
	assert.False(t, snap.Probes[3].OK)
	assert.NotEmpty(t, snap.Probes[3].Err)
	assert.Same(t, snap, r.Snapshot())
}

func TestDiscoverPriorityCoversEveryCategory(t *testing.T) {
	r := New(adapter.NewMockAdapter("llama3:8b", "deepseek-coder:6.7b"), selector.New())

	snap, err := r.Discover(context.Background())
	require.NoError(t, err)

	for _, c := range schema.Categories() {
		m, ok := snap.Model(c)
		require.True(t, ok, c)
		assert.Contains(t, snap.Available, m)
	}
	m, _ := snap.Model(schema.CategoryCoding)
	assert.Equal(t, "deepseek-coder:6.7b", m)
}

func TestDiscoverFallsBackToList(t *testing.T) {
	mock := adapter.NewMockAdapter("phi3:mini", "gemma:2b", "phi3:mini")
	r := New(mock, nil, WithCandidates("llama3:8b"))

	snap, err := r.Discover(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Degraded)
	assert.Equal(t, SourceList, snap.Source)
	assert.Equal(t, []string{"phi3:mini", "gemma:2b"}, snap.Available)
	m, _ := snap.Model(schema.CategoryChat)
	assert.Equal(t, "phi3:mini", m)
}

func TestDiscoverDegradedWhenListFails(t *testing.T) {
	mock := adapter.NewMockAdapter()
	mock.SetListError(errors.New("connection refused"))
	r := New(mock, nil)

	snap, err := r.Discover(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Degraded)
	assert.Empty(t, snap.Available)
	assert.Nil(t, snap.Priority)
}

func TestProbeTimeoutExcludesCandidate(t *testing.T) {
	a := &slowAdapter{
		MockAdapter: adapter.NewMockAdapter("llama3:8b", "qwen2.5:14b"),
		hang:        map[string]bool{"qwen2.5:14b": true},
	}
	r := New(a, nil,
		WithCandidates("llama3:8b", "qwen2.5:14b"),
		WithTimeouts(20*time.Millisecond, 20*time.Millisecond))

	start := time.Now()
	snap, err := r.Discover(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"llama3:8b"}, snap.Available)
	assert.Contains(t, snap.Probes[1].Err, "deadline exceeded")
}

func TestDiscoverCanceled(t *testing.T) {
	r := New(adapter.NewMockAdapter("llama3:8b"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Discover(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, r.Snapshot().Degraded)
}

func TestMarkDegradedUntilRediscovery(t *testing.T) {
	r := New(adapter.NewMockAdapter("llama3:8b"), nil)
	first, err := r.Discover(context.Background())
	require.NoError(t, err)
	require.False(t, first.Degraded)

	r.MarkDegraded()
	degraded := r.Snapshot()
	assert.True(t, degraded.Degraded)
	assert.False(t, first.Degraded, "published snapshots must not change")
	assert.Equal(t, first.Available, degraded.Available)

	r.MarkDegraded()
	assert.Same(t, degraded, r.Snapshot())

	again, err := r.Discover(context.Background())
	require.NoError(t, err)
	assert.False(t, again.Degraded)
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	r := New(adapter.NewMockAdapter("llama3:8b", "qwen2.5:14b"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := r.Snapshot()
				if !snap.Degraded {
					_, ok := snap.Model(schema.CategoryChat)
					assert.True(t, ok)
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := r.Discover(context.Background())
		require.NoError(t, err)
		r.MarkDegraded()
	}
	wg.Wait()
}

func TestWithConfig(t *testing.T) {
	mock := adapter.NewMockAdapter("a", "b")
	r := New(mock, nil, WithConfig(config.RegistryConfig{Candidates: []string{"b", "a"}, ProbeTimeoutMs: 100}))

	snap, err := r.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, snap.Available)
	assert.ElementsMatch(t, []string{"b", "a"}, mock.Probes())
}
