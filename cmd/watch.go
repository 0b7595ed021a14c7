package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/engine"
	"github.com/bnema/compatctl/internal/ui/badge"
	"github.com/bnema/compatctl/internal/watcher"
)

var watchNoTUI bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the badge up to date as add-ons change",
	Long: `Runs until interrupted. Refreshes the table on start, polls the profile
for installed, removed, enabled and disabled add-ons, and fetches the
report again once the rebuild interval has elapsed.

On a terminal the badge is drawn live; otherwise (or with --no-tui)
badge changes are written to the log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cache, err := openCache()
		if err != nil {
			return err
		}
		manager, err := newManager()
		if err != nil {
			return err
		}
		w := watcher.New(manager, appLogger, cfg.WatchInterval, cfg.RebuildInterval)

		useTUI := !watchNoTUI && isatty.IsTerminal(os.Stdout.Fd())
		appLogger.Info("Watching profile", "profile", manager.ProfileDir(), "tui", useTUI)

		if !useTUI {
			sched := engine.NewScheduler(ctx, newEngine(cache, manager, badge.NewLogSink(appLogger), false), appLogger, cfg.Throttle)
			defer logWatchSummary(sched)
			if err := w.Run(ctx, sched); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}

		last, _, err := cache.Badge()
		if err != nil {
			appLogger.Warn("Cannot read cached badge", "error", err)
		}
		model := badge.NewModel(last.Text, last.Color).WithInfo("Profile " + manager.ProfileDir())
		p := tea.NewProgram(model, tea.WithContext(ctx))
		sched := engine.NewScheduler(ctx, newEngine(cache, manager, badge.NewProgramSink(p), false), appLogger, cfg.Throttle)
		defer logWatchSummary(sched)

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := w.Run(watchCtx, sched); err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error("Watcher stopped", "error", err)
			}
		}()

		_, err = p.Run()
		cancel()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	},
}

func logWatchSummary(sched *engine.Scheduler) {
	done, failed := sched.Stats()
	appLogger.Info("Watch stopped", "jobs", done, "failed", failed, "interrupted", sched.InFlight())
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoTUI, "no-tui", false, "Log badge changes instead of drawing them")
	rootCmd.AddCommand(watchCmd)
}
