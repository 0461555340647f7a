package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements the Adapter interface for OpenAI-compatible servers
// (llama.cpp server, vLLM, LM Studio, Ollama's /v1 endpoint, DeepSeek, OpenAI).
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI-compatible adapter. An empty baseURL
// targets api.openai.com, which requires an API key.
func NewOpenAIAdapter(apiKey, baseURL string) (*OpenAIAdapter, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Local servers ignore the key but the client insists on sending one.
		opts = append(opts, option.WithAPIKey("local"))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Show retrieves a single model from /models/{id}.
func (a *OpenAIAdapter) Show(ctx context.Context, model string) error {
	if _, err := a.client.Models.Get(ctx, model); err != nil {
		return wrapOpenAIError(err)
	}
	return nil
}

// List returns the ids served by /models.
func (a *OpenAIAdapter) List(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// Generate sends the prompt as a single user message.
func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) Result {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(int64(req.Options.MaxTokens)),
		Temperature: openai.Float(req.Options.Temperature),
		TopP:        openai.Float(req.Options.TopP),
	})
	if err != nil {
		return Failure(req.Model, wrapOpenAIError(err))
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	usage := &Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	return Success(req.Model, text, usage)
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		wrapped := fmt.Errorf("openai API error: %w", err)
		if apiErr.StatusCode == 404 {
			wrapped = fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
		return &AdapterError{Status: apiErr.StatusCode, Err: wrapped}
	}
	return fmt.Errorf("openai API error: %w", err)
}
