package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaHost is the endpoint used when no host is configured.
const DefaultOllamaHost = "http://127.0.0.1:11434"

// OllamaAdapter implements the Adapter interface for a local Ollama server.
type OllamaAdapter struct {
	client *api.Client
	host   string
}

// NewOllamaAdapter creates an adapter for the Ollama server at host.
// Per-call deadlines come from the caller's context; httpClient may be nil.
func NewOllamaAdapter(host string, httpClient *http.Client) (*OllamaAdapter, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		}
	}

	return &OllamaAdapter{
		client: api.NewClient(base, httpClient),
		host:   base.String(),
	}, nil
}

// Name returns the adapter identifier.
func (a *OllamaAdapter) Name() string {
	return "ollama"
}

// Host returns the endpoint this adapter talks to.
func (a *OllamaAdapter) Host() string {
	return a.host
}

// Show probes a model through /api/show.
func (a *OllamaAdapter) Show(ctx context.Context, model string) error {
	if _, err := a.client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return a.wrap(err)
	}
	return nil
}

// List returns the model names reported by /api/tags.
func (a *OllamaAdapter) List(ctx context.Context) ([]string, error) {
	resp, err := a.client.List(ctx)
	if err != nil {
		return nil, a.wrap(err)
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name != "" {
			models = append(models, name)
		}
	}
	return models, nil
}

// Generate calls /api/generate with streaming disabled.
func (a *OllamaAdapter) Generate(ctx context.Context, req Request) Result {
	stream := false
	genReq := &api.GenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature":    req.Options.Temperature,
			"num_predict":    req.Options.MaxTokens,
			"top_p":          req.Options.TopP,
			"repeat_penalty": req.Options.RepeatPenalty,
		},
	}

	var sb strings.Builder
	var usage *Usage
	err := a.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		if resp.Done {
			usage = &Usage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			}
		}
		return nil
	})
	if err != nil {
		return Failure(req.Model, a.wrap(err))
	}
	return Success(req.Model, sb.String(), usage)
}

// wrap converts Ollama status errors into AdapterErrors. Anything that is
// neither a status, transport nor context error came from decoding the body.
func (a *OllamaAdapter) wrap(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		wrapped := fmt.Errorf("ollama returned status %d: %s", statusErr.StatusCode, statusErr.ErrorMessage)
		if statusErr.StatusCode == http.StatusNotFound {
			wrapped = fmt.Errorf("%w: %s", ErrModelNotFound, statusErr.ErrorMessage)
		}
		return &AdapterError{Status: statusErr.StatusCode, Err: wrapped}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	return fmt.Errorf("ollama %w: %v", ErrMalformedResponse, err)
}
