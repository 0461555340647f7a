package adapter

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GoogleAdapter implements the Adapter interface for Gemini models.
type GoogleAdapter struct {
	client *genai.Client
}

// NewGoogleAdapter creates a new Google Gemini adapter.
func NewGoogleAdapter(ctx context.Context, apiKey string) (*GoogleAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAdapter{
		client: client,
	}, nil
}

// Name returns the adapter identifier.
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Show retrieves a single model.
func (a *GoogleAdapter) Show(ctx context.Context, model string) error {
	if _, err := a.client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("google API error: %w", err)
	}
	return nil
}

// List returns the first page of Gemini models with the "models/" prefix removed.
func (a *GoogleAdapter) List(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("google API error: %w", err)
	}

	models := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		if m == nil {
			continue
		}
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}

// Generate sends a prompt to Gemini.
func (a *GoogleAdapter) Generate(ctx context.Context, req Request) Result {
	resp, err := a.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Options.Temperature)),
		TopP:            genai.Ptr(float32(req.Options.TopP)),
		MaxOutputTokens: int32(req.Options.MaxTokens),
	})
	if err != nil {
		return Failure(req.Model, fmt.Errorf("google API error: %w", err))
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	var usage *Usage
	if resp != nil && resp.UsageMetadata != nil {
		usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return Success(req.Model, sb.String(), usage)
}
