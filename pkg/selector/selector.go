package selector

import (
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/schema"
)

// DefaultFallbacks returns the built-in per-category priority lists.
func DefaultFallbacks() map[schema.Category][]string {
	research := []string{"qwen2.5:14b", "mixtral:latest", "llama3.1:latest", "llama3:8b"}
	return map[schema.Category][]string{
		schema.CategoryChat:        {"qwen2.5:14b", "mixtral:latest", "llama3:8b"},
		schema.CategoryCoding:      {"deepseek-coder:6.7b", "codellama:7b", "llama3:8b"},
		schema.CategoryReasoning:   {"mixtral:latest", "qwen2.5:14b", "llama3.1:latest", "llama3:8b"},
		schema.CategoryResearch:    research,
		schema.CategoryWebSearch:   append([]string(nil), research...),
		schema.CategoryLightweight: {"llama3:8b", "qwen2.5:14b"},
	}
}

// Selector picks one model per category from the models a backend serves.
type Selector struct {
	profiles  *config.Profiles
	aliases   *config.ModelAliases
	fallbacks map[schema.Category][]string
	last      string
}

// Option configures a Selector.
type Option func(*Selector)

// WithProfiles sets the model-preferences document.
func WithProfiles(p *config.Profiles) Option {
	return func(s *Selector) {
		s.profiles = p
	}
}

// WithAliases resolves aliases found in profile lists.
func WithAliases(a *config.ModelAliases) Option {
	return func(s *Selector) {
		s.aliases = a
	}
}

// WithFallbacks replaces the built-in priority lists.
func WithFallbacks(f map[schema.Category][]string) Option {
	return func(s *Selector) {
		s.fallbacks = f
	}
}

// WithDefaultModel sets the model returned when nothing is available.
func WithDefaultModel(model string) Option {
	return func(s *Selector) {
		if model != "" {
			s.last = model
		}
	}
}

// New creates a selector with the built-in priority lists.
func New(opts ...Option) *Selector {
	s := &Selector{
		fallbacks: DefaultFallbacks(),
		last:      config.DefaultModel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the model for category given the available models.
// Precedence: profile list, built-in list, first available, default model.
// The result is always a member of available unless available is empty.
func (s *Selector) Select(category schema.Category, available []string) string {
	if len(available) == 0 {
		return s.last
	}

	set := make(map[string]struct{}, len(available))
	for _, m := range available {
		set[m] = struct{}{}
	}

	if model, ok := firstAvailable(s.aliases.ResolveAll(s.profiles.ModelsFor(category)), set); ok {
		return model
	}
	if model, ok := firstAvailable(s.fallbackFor(category), set); ok {
		return model
	}
	return available[0]
}

// Priorities computes the selected model for every known category.
func (s *Selector) Priorities(available []string) map[schema.Category]string {
	out := make(map[schema.Category]string, len(schema.Categories()))
	for _, c := range schema.Categories() {
		out[c] = s.Select(c, available)
	}
	return out
}

func (s *Selector) fallbackFor(category schema.Category) []string {
	switch category {
	case schema.CategoryChat, schema.CategoryCoding, schema.CategoryReasoning,
		schema.CategoryLightweight, schema.CategoryResearch, schema.CategoryWebSearch:
		if list, ok := s.fallbacks[category]; ok {
			return list
		}
		return s.fallbacks[schema.CategoryChat]
	case schema.CategoryUnknown:
		return s.fallbacks[schema.CategoryChat]
	default:
		return s.fallbacks[schema.CategoryChat]
	}
}

func firstAvailable(candidates []string, available map[string]struct{}) (string, bool) {
	for _, m := range candidates {
		if _, ok := available[m]; ok {
			return m, true
		}
	}
	return "", false
}
