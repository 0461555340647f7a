package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	mu              sync.Mutex
	models          []string
	responses       map[string]string
	failures        map[string]error
	listErr         error
	defaultResponse string
	calls           []Request
	probes          []string
}

// NewMockAdapter creates a mock adapter that serves the given models and
// echoes prompts back with a fixed prefix.
func NewMockAdapter(models ...string) *MockAdapter {
	return &MockAdapter{
		models:          models,
		responses:       make(map[string]string),
		failures:        make(map[string]error),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with a response per model.
// Every model with a response is considered available.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	m := NewMockAdapter()
	if defaultResponse != "" {
		m.defaultResponse = defaultResponse
	}
	for model, response := range responses {
		m.models = append(m.models, model)
		m.responses[model] = response
	}
	return m
}

// SetResponse fixes the text returned for model.
func (a *MockAdapter) SetResponse(model, response string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[model] = response
}

// SetFailure makes Generate fail for model with err.
func (a *MockAdapter) SetFailure(model string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[model] = err
}

// SetListError makes List fail with err.
func (a *MockAdapter) SetListError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listErr = err
}

// Calls returns a copy of every generate request received.
func (a *MockAdapter) Calls() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.calls))
	copy(out, a.calls)
	return out
}

// Probes returns the models passed to Show, in call order.
func (a *MockAdapter) Probes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.probes))
	copy(out, a.probes)
	return out
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Show succeeds for configured models.
func (a *MockAdapter) Show(ctx context.Context, model string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.probes = append(a.probes, model)
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, m := range a.models {
		if m == model {
			return nil
		}
	}
	return &AdapterError{Status: 404, Err: fmt.Errorf("%w: %s", ErrModelNotFound, model)}
}

// List returns the configured models.
func (a *MockAdapter) List(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]string, len(a.models))
	copy(out, a.models)
	return out, nil
}

// Generate returns the configured response for the model, or the prompt
// prefixed with the default response.
func (a *MockAdapter) Generate(ctx context.Context, req Request) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, req)

	if err := ctx.Err(); err != nil {
		return Failure(req.Model, err)
	}
	if err, ok := a.failures[req.Model]; ok {
		return Failure(req.Model, err)
	}
	if response, ok := a.responses[req.Model]; ok {
		return Success(req.Model, response, nil)
	}
	return Success(req.Model, fmt.Sprintf("%s\n%s", a.defaultResponse, req.Prompt), nil)
}
