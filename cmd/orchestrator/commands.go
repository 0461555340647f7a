package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zen-systems/orchestrator/pkg/archive"
	"github.com/zen-systems/orchestrator/pkg/brain"
	"github.com/zen-systems/orchestrator/pkg/config"
	"github.com/zen-systems/orchestrator/pkg/planner"
	"github.com/zen-systems/orchestrator/pkg/router"
	"github.com/zen-systems/orchestrator/pkg/schema"
)

const chatHelp = `Commands:
  help | trợ giúp      show this help
  mode | chế độ        show whether real models are answering
  model | mô hình      show the model chosen per category
  test | kiểm tra      re-run model discovery
  exit | thoát         leave the chat
Anything else is sent to the orchestrator.`

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			return a.chat(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) chat(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "ORCHESTRATOR (%s, %s mode). Type \"help\" for commands.\n", a.adapter.Name(), a.mode())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		task := a.brain.Detect(line)
		if task.Intent.IsCommand() {
			if quit := a.command(ctx, task.Intent, out); quit {
				return nil
			}
			continue
		}

		res := a.brain.Handle(ctx, task)
		printResult(out, res)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// command runs a chat control command and reports whether to quit.
func (a *app) command(ctx context.Context, intent schema.Intent, out io.Writer) bool {
	switch intent {
	case schema.IntentCommandExit:
		fmt.Fprintln(out, "Goodbye.")
		return true
	case schema.IntentCommandHelp:
		fmt.Fprintln(out, chatHelp)
	case schema.IntentCommandMode:
		fmt.Fprintf(out, "Backend %s is running in %s mode.\n", a.adapter.Name(), a.mode())
	case schema.IntentCommandModel:
		a.printRoutes(out)
	case schema.IntentCommandTest:
		snap, err := a.registry.Discover(ctx)
		if err != nil {
			fmt.Fprintf(out, "Discovery interrupted: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Discovery found %d model(s) via %s, %s mode.\n", len(snap.Available), snap.Source, a.mode())
	}
	return false
}

func (a *app) mode() string {
	if a.registry.Snapshot().Degraded {
		return "demo"
	}
	return "real"
}

func printResult(out io.Writer, res brain.Result) {
	fmt.Fprintln(out, res.Envelope.Response)
	fmt.Fprintf(out, "\n[%s | %s | %s | %s]\n", res.Envelope.Model, res.Envelope.Mode, res.Envelope.Quality, res.Elapsed.Round(time.Millisecond))
}

func askCmd() *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send one prompt through the orchestrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res := a.brain.Process(cmd.Context(), args[0])
			if jsonFlag {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the full result as JSON")
	return cmd
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [prompt]",
		Short: "Show the detected task and plan without calling a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			task := router.New(router.WithLogger(logger)).Detect(args[0])
			plan := planner.New(cfg.Permissions, planner.WithLogger(logger)).Analyze(task)

			return writeJSON(cmd.OutOrStdout(), struct {
				Task schema.Task `json:"task"`
				Plan schema.Plan `json:"plan"`
			}{task, plan})
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Probe candidate models and show which are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			snap := a.registry.Snapshot()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tSTATUS\tDURATION\tERROR")
			for _, p := range snap.Probes {
				status := "available"
				if !p.OK {
					status = "missing"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Model, status, p.Duration.Round(time.Millisecond), p.Err)
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "BACKEND\t%s\t\t\n", a.adapter.Name())
			fmt.Fprintf(w, "SOURCE\t%s\t\t\n", snap.Source)
			fmt.Fprintf(w, "AVAILABLE\t%s\t\t\n", strings.Join(snap.Available, ", "))
			fmt.Fprintf(w, "MODE\t%s\t\t\n", a.mode())
			return w.Flush()
		},
	}
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the model selected for each task category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			a.printRoutes(cmd.OutOrStdout())
			return nil
		},
	}
}

func (a *app) printRoutes(out io.Writer) {
	snap := a.registry.Snapshot()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tMODEL\tBACKUP")
	for _, c := range schema.Categories() {
		model, ok := snap.Model(c)
		if !ok {
			model = a.registry.Selector().Select(c, snap.Available)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c, model, a.cfg.Dispatch.BackupFor(model))
	}
	if snap.Degraded {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DEGRADED\tresponses are synthesized\t")
	}
	_ = w.Flush()
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every model in llm_profiles.yaml is known to the backend",
		Long: `Resolves the aliases in each preference profile and checks the result
against the provider model list in models.yaml for the configured backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return validateProfiles(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func validateProfiles(cfg *config.Config, out, errOut io.Writer) error {
	if cfg.Aliases == nil || len(cfg.Aliases.Providers[cfg.Backend]) == 0 {
		fmt.Fprintf(out, "No provider model list for backend %s - nothing to validate.\n", cfg.Backend)
		return nil
	}

	errs := cfg.Aliases.ValidateProfiles(cfg.Backend, cfg.Profiles)
	if len(errs) == 0 {
		fmt.Fprintln(out, "All models in llm_profiles.yaml are valid.")
		return nil
	}

	fmt.Fprintf(errOut, "Found %d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(errOut, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "List archived interactions, optionally filtered by text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			if a.archive == nil {
				return fmt.Errorf("archive unavailable")
			}

			var recs []*archive.Record
			if len(args) == 1 {
				recs, err = a.archive.Search(args[0])
			} else {
				recs, err = a.archive.Recent(limit)
			}
			if err != nil {
				return err
			}
			if len(args) == 1 && len(recs) > limit {
				recs = recs[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UPDATED\tCOUNT\tINTENT\tMODEL\tREQUEST")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					r.UpdatedAt.Format("2006-01-02 15:04"), r.Count, r.Task.Intent, r.Envelope.Model, snippet(r.Task.Text, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records")
	return cmd
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
