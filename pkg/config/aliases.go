package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelAliases maps short names to canonical models and lists the models
// each backend serves.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// LoadAliases reads model aliases from a YAML file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var aliases ModelAliases
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, err
	}

	if aliases.Aliases == nil {
		aliases.Aliases = make(map[string]string)
	}
	if aliases.Providers == nil {
		aliases.Providers = make(map[string][]string)
	}

	return &aliases, nil
}

// LoadAliasesWithFallback loads models.yaml from configDir, falling back to
// defaultPath and then to DefaultAliases.
func LoadAliasesWithFallback(configDir, defaultPath string) (*ModelAliases, error) {
	if configDir != "" {
		userPath := filepath.Join(configDir, "models.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return LoadAliases(userPath)
		}
	}

	if defaultPath != "" {
		if _, err := os.Stat(defaultPath); err == nil {
			return LoadAliases(defaultPath)
		}
	}

	return DefaultAliases(), nil
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// ResolveAll resolves every entry of models, preserving order.
func (a *ModelAliases) ResolveAll(models []string) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = a.Resolve(m)
	}
	return out
}

// ValidateProfiles resolves every model named in the preference profiles and
// reports the ones missing from backend's provider list, in profile order.
func (a *ModelAliases) ValidateProfiles(backend string, p *Profiles) []error {
	if a == nil || p == nil {
		return nil
	}
	known, ok := a.Providers[backend]
	if !ok {
		return []error{fmt.Errorf("no provider list for backend %q", backend)}
	}

	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		for _, m := range p.Profiles[name].Models {
			model := a.Resolve(m)
			if !slices.Contains(known, model) {
				errs = append(errs, fmt.Errorf("profile %q: model %q not in %s provider list", name, model, backend))
			}
		}
	}
	return errs
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"fast":    "llama3:8b",
			"quality": "qwen2.5:14b",
			"code":    "deepseek-coder:6.7b",
			"deep":    "mixtral:latest",
		},
		Providers: map[string][]string{
			"ollama": {
				"llama3:8b", "llama3.1:latest", "qwen2.5:14b",
				"mixtral:latest", "deepseek-coder:6.7b", "codellama:7b",
			},
		},
	}
}
