package config

import (
	"time"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// DefaultModel is the model of last resort for selection and backup.
const DefaultModel = "llama3:8b"

// RegistryConfig controls model discovery.
type RegistryConfig struct {
	Candidates     []string `yaml:"candidates,omitempty"`
	ProbeTimeoutMs int      `yaml:"probe_timeout_ms,omitempty"`
	ListTimeoutMs  int      `yaml:"list_timeout_ms,omitempty"`
}

// ProbeTimeout returns the per-candidate probe deadline.
func (r RegistryConfig) ProbeTimeout() time.Duration {
	return time.Duration(r.ProbeTimeoutMs) * time.Millisecond
}

// ListTimeout returns the deadline of the list fallback.
func (r RegistryConfig) ListTimeout() time.Duration {
	return time.Duration(r.ListTimeoutMs) * time.Millisecond
}

// DispatchConfig holds per-model budgets, the backup map and sampling options.
type DispatchConfig struct {
	ModelTimeoutsSec  map[string]int    `yaml:"model_timeouts_sec,omitempty"`
	DefaultTimeoutSec int               `yaml:"default_timeout_sec,omitempty"`
	LongTaskMinSec    int               `yaml:"long_task_min_sec,omitempty"`
	MaxTokens         map[string]int    `yaml:"max_tokens,omitempty"`
	DefaultMaxTokens  int               `yaml:"default_max_tokens,omitempty"`
	Backups           map[string]string `yaml:"backups,omitempty"`
	DefaultBackup     string            `yaml:"default_backup,omitempty"`
	HighQualityLength int               `yaml:"high_quality_length,omitempty"`
	Temperature       float64           `yaml:"temperature,omitempty"`
	TopP              float64           `yaml:"top_p,omitempty"`
	RepeatPenalty     float64           `yaml:"repeat_penalty,omitempty"`
	Retry             RetryConfig       `yaml:"retry,omitempty"`
}

// RetryConfig defines same-model retry and backoff behavior for transient
// failures. MaxRetries 0 disables retries.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty"`
}

// DefaultCandidates returns the models probed when none are configured.
func DefaultCandidates() []string {
	return []string{"llama3:8b", "qwen2.5:14b", "mixtral:latest", "deepseek-coder:6.7b"}
}

// DefaultDispatchConfig returns the built-in dispatch budgets.
func DefaultDispatchConfig() DispatchConfig {
	var cfg DispatchConfig
	applyDispatchDefaults(&cfg)
	return cfg
}

// TimeoutFor returns the call deadline for model when serving category.
// Coding and research style categories never get less than LongTaskMinSec.
func (d DispatchConfig) TimeoutFor(model string, category schema.Category) time.Duration {
	sec, ok := d.ModelTimeoutsSec[model]
	if !ok {
		sec = d.DefaultTimeoutSec
	}
	switch category {
	case schema.CategoryCoding, schema.CategoryResearch, schema.CategoryWebSearch:
		if sec < d.LongTaskMinSec {
			sec = d.LongTaskMinSec
		}
	case schema.CategoryChat, schema.CategoryReasoning, schema.CategoryLightweight, schema.CategoryUnknown:
	default:
	}
	return time.Duration(sec) * time.Second
}

// MaxTokensFor returns the output token budget for category.
func (d DispatchConfig) MaxTokensFor(category schema.Category) int {
	if n, ok := d.MaxTokens[string(category)]; ok && n > 0 {
		return n
	}
	return d.DefaultMaxTokens
}

// BackupFor returns the backup model for model, or the default backup.
func (d DispatchConfig) BackupFor(model string) string {
	if backup, ok := d.Backups[model]; ok && backup != "" {
		return backup
	}
	return d.DefaultBackup
}

func applyRegistryDefaults(cfg *RegistryConfig) {
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates()
	}
	if cfg.ProbeTimeoutMs == 0 {
		cfg.ProbeTimeoutMs = 3000
	}
	if cfg.ListTimeoutMs == 0 {
		cfg.ListTimeoutMs = 5000
	}
}

func applyDispatchDefaults(cfg *DispatchConfig) {
	if cfg.ModelTimeoutsSec == nil {
		cfg.ModelTimeoutsSec = map[string]int{
			"qwen2.5:14b":         45,
			"mixtral:latest":      60,
			"llama3:8b":           30,
			"deepseek-coder:6.7b": 40,
		}
	}
	if cfg.DefaultTimeoutSec == 0 {
		cfg.DefaultTimeoutSec = 30
	}
	if cfg.LongTaskMinSec == 0 {
		cfg.LongTaskMinSec = 40
	}
	if cfg.MaxTokens == nil {
		cfg.MaxTokens = map[string]int{
			string(schema.CategoryCoding):    4096,
			string(schema.CategoryResearch):  3072,
			string(schema.CategoryWebSearch): 3072,
			string(schema.CategoryReasoning): 3072,
		}
	}
	if cfg.DefaultMaxTokens == 0 {
		cfg.DefaultMaxTokens = 2048
	}
	if cfg.Backups == nil {
		cfg.Backups = map[string]string{
			"qwen2.5:14b":         "llama3:8b",
			"mixtral:latest":      "qwen2.5:14b",
			"llama3:8b":           "qwen2.5:14b",
			"deepseek-coder:6.7b": "llama3:8b",
		}
	}
	if cfg.DefaultBackup == "" {
		cfg.DefaultBackup = DefaultModel
	}
	if cfg.HighQualityLength == 0 {
		cfg.HighQualityLength = 300
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.RepeatPenalty == 0 {
		cfg.RepeatPenalty = 1.1
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}
}
