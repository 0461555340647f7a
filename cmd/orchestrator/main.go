package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/adapter"
	"github.com/zen-systems/orchestrator/pkg/archive"
	"github.com/zen-systems/orchestrator/pkg/brain"
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/dispatch"
	"github.com/zen-systems/orchestrator/pkg/logging"
	"github.com/zen-systems/orchestrator/pkg/planner"
	"github.com/zen-systems/orchestrator/pkg/registry"
	"github.com/zen-systems/orchestrator/pkg/router"
	"github.com/zen-systems/orchestrator/pkg/selector"
)

var (
	configDir   string
	backendFlag string
	debugFlag   bool
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	adapter  adapter.Adapter
	registry *registry.Registry
	brain    *brain.Brain
	archive  *archive.Store
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orchestrator",
		Short: "Local chat orchestrator with model discovery and quality fallback",
		Long: `Orchestrator routes chat input through language and intent detection,
picks a local model per task category, checks the answer against a quality
bar and falls back to a backup model or a demo placeholder.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.orchestrator)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend: ollama, openai, anthropic, google, mock")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

// loadConfig reads configuration and applies the global flags.
func loadConfig() (*config.Config, *zap.Logger, error) {
	bootstrap, err := logging.New(logging.Config{Level: "warn"})
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configDir, bootstrap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if debugFlag {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config(cfg.Logging))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp builds the full pipeline and runs model discovery once.
func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := createAdapter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", cfg.Backend, err)
	}

	sel := selector.New(
		selector.WithProfiles(cfg.Profiles),
		selector.WithAliases(cfg.Aliases),
	)
	reg := registry.New(a, sel,
		registry.WithLogger(logger.Named("registry")),
		registry.WithConfig(cfg.Registry),
	)
	if _, err := reg.Discover(ctx); err != nil {
		return nil, err
	}

	store, err := archive.NewStore(filepath.Join(cfg.ConfigDir, "archive"),
		archive.WithLogger(logger.Named("archive")))
	if err != nil {
		logger.Warn("archive unavailable, history disabled", zap.Error(err))
		store = nil
	}

	p := planner.New(cfg.Permissions, planner.WithLogger(logger.Named("planner")))
	d := dispatch.New(a, reg,
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithConfig(cfg.Dispatch),
	)

	opts := []brain.Option{
		brain.WithLogger(logger.Named("brain")),
		brain.WithRouter(router.New(router.WithLogger(logger.Named("router")))),
	}
	if store != nil {
		opts = append(opts, brain.WithArchive(store))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		adapter:  a,
		registry: reg,
		brain:    brain.New(p, d, opts...),
		archive:  store,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func createAdapter(ctx context.Context, cfg *config.Config) (adapter.Adapter, error) {
	if !cfg.HasAdapter(cfg.Backend) {
		return nil, fmt.Errorf("backend %q is unknown or missing credentials", cfg.Backend)
	}

	switch cfg.Backend {
	case config.BackendOllama:
		return adapter.NewOllamaAdapter(cfg.OllamaHost, nil)
	case config.BackendOpenAI:
		return adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	case config.BackendAnthropic:
		return adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
	case config.BackendGoogle:
		return adapter.NewGoogleAdapter(ctx, cfg.GoogleAPIKey)
	default:
		return adapter.NewMockAdapter(cfg.Registry.Candidates...), nil
	}
}
