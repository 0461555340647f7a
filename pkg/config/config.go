package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend setting.
const (
	BackendOllama    = "ollama"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGoogle    = "google"
	BackendMock      = "mock"
)

// Config holds the application configuration.
type Config struct {
	ConfigDir string
	Backend   string

	OllamaHost      string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GoogleAPIKey    string

	Registry RegistryConfig
	Dispatch DispatchConfig
	Logging  LoggingConfig

	Profiles    *Profiles
	Aliases     *ModelAliases
	Permissions string
}

// FileConfig represents the structure of ~/.orchestrator/config.yaml.
// API keys are read from the environment only.
type FileConfig struct {
	Backend  string         `yaml:"backend"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Registry RegistryConfig `yaml:"registry"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OllamaConfig locates the Ollama server.
type OllamaConfig struct {
	Host string `yaml:"host"`
}

// OpenAIConfig locates an OpenAI-compatible server.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
	File        string `yaml:"file,omitempty"`
}

// Load reads configuration from the config directory and environment variables.
// An empty dir resolves to $ORCHESTRATOR_CONFIG_DIR, then ~/.orchestrator.
// Missing or malformed documents fall back to defaults with a warning.
func Load(dir string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	configDir, err := resolveConfigDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"), logger)
	applyFileDefaults(fileConfig)

	cfg := &Config{
		ConfigDir:       configDir,
		Backend:         getEnvOrDefault("ORCHESTRATOR_BACKEND", fileConfig.Backend),
		OllamaHost:      getEnvOrDefault("OLLAMA_HOST", fileConfig.Ollama.Host),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   getEnvOrDefault("OPENAI_BASE_URL", fileConfig.OpenAI.BaseURL),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		Registry:        fileConfig.Registry,
		Dispatch:        fileConfig.Dispatch,
		Logging:         fileConfig.Logging,
		Permissions:     filepath.Join(configDir, "permissions.yaml"),
	}

	cfg.Profiles = LoadProfilesWithFallback(filepath.Join(configDir, "llm_profiles.yaml"), logger)

	aliases, err := LoadAliasesWithFallback(configDir, "")
	if err != nil {
		logger.Warn("model aliases unreadable, using defaults", zap.Error(err))
		aliases = DefaultAliases()
	}
	cfg.Aliases = aliases

	return cfg, nil
}

// Default returns the configuration used when no documents exist.
func Default() *Config {
	fc := &FileConfig{}
	applyFileDefaults(fc)
	return &Config{
		Backend:    fc.Backend,
		OllamaHost: fc.Ollama.Host,
		Registry:   fc.Registry,
		Dispatch:   fc.Dispatch,
		Logging:    fc.Logging,
		Profiles:   &Profiles{Profiles: map[string]Profile{}},
		Aliases:    DefaultAliases(),
	}
}

// HasAdapter returns true if the credentials for the given backend are configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case BackendOllama, BackendMock:
		return true
	case BackendOpenAI:
		return c.OpenAIAPIKey != "" || c.OpenAIBaseURL != ""
	case BackendAnthropic:
		return c.AnthropicAPIKey != ""
	case BackendGoogle:
		return c.GoogleAPIKey != ""
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning an empty config if it is
// missing or unparsable.
func loadFileConfig(path string, logger *zap.Logger) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("config file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		}
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Warn("config file malformed, using defaults", zap.String("path", path), zap.Error(err))
		return &FileConfig{}
	}
	return cfg
}

func applyFileDefaults(cfg *FileConfig) {
	if cfg.Backend == "" {
		cfg.Backend = BackendOllama
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	applyRegistryDefaults(&cfg.Registry)
	applyDispatchDefaults(&cfg.Dispatch)
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func resolveConfigDir(dir string) (string, error) {
	if dir == "" {
		dir = os.Getenv("ORCHESTRATOR_CONFIG_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".orchestrator")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
