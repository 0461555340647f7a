package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter implements the Adapter interface for Claude models.
type AnthropicAdapter struct {
	client anthropic.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter.
func NewAnthropicAdapter(apiKey string) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return &AnthropicAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Show retrieves a single model from the models API.
func (a *AnthropicAdapter) Show(ctx context.Context, model string) error {
	if _, err := a.client.Models.Get(ctx, model, anthropic.ModelGetParams{}); err != nil {
		return wrapAnthropicError(err)
	}
	return nil
}

// List returns the first page of models visible to the API key.
func (a *AnthropicAdapter) List(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, wrapAnthropicError(err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// Generate sends a prompt to Claude and concatenates the text blocks of the reply.
func (a *AnthropicAdapter) Generate(ctx context.Context, req Request) Result {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.Options.MaxTokens),
		Temperature: anthropic.Float(req.Options.Temperature),
		TopP:        anthropic.Float(req.Options.TopP),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return Failure(req.Model, wrapAnthropicError(err))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	usage := &Usage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}
	return Success(req.Model, sb.String(), usage)
}

func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		wrapped := fmt.Errorf("anthropic API error: %w", err)
		if apiErr.StatusCode == 404 {
			wrapped = fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
		return &AdapterError{Status: apiErr.StatusCode, Temporary: apiErr.StatusCode == 529, Err: wrapped}
	}
	return fmt.Errorf("anthropic API error: %w", err)
}
