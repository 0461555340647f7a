package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// Profiles is the model-preferences document (llm_profiles.yaml).
type Profiles struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile lists preferred models for one category, most preferred first.
type Profile struct {
	Description string   `yaml:"description,omitempty"`
	Models      []string `yaml:"models"`
}

// LoadProfiles reads model preferences from a YAML file.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Profiles == nil {
		p.Profiles = make(map[string]Profile)
	}
	return &p, nil
}

// LoadProfilesWithFallback loads preferences from path. A missing or
// malformed document yields an empty set so the built-in lists apply.
func LoadProfilesWithFallback(path string, logger *zap.Logger) *Profiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := LoadProfiles(path)
	if err != nil {
		logger.Warn("model profiles unavailable, using built-in priorities",
			zap.String("path", path), zap.Error(err))
		return &Profiles{Profiles: make(map[string]Profile)}
	}
	return p
}

// ModelsFor returns the configured models for category, or nil.
func (p *Profiles) ModelsFor(category schema.Category) []string {
	if p == nil || p.Profiles == nil {
		return nil
	}
	profile, ok := p.Profiles[string(category)]
	if !ok {
		return nil
	}
	return profile.Models
}
