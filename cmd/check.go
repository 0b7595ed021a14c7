package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/engine"
	"github.com/bnema/compatctl/internal/report"
	"github.com/bnema/compatctl/internal/ui/badge"
	"github.com/bnema/compatctl/internal/ui/progress"
	"github.com/bnema/compatctl/internal/ui/styles"
)

var checkOffline bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch the compatibility report and update the badge",
	Long: `Fetches the compatibility report, rebuilds the add-on table for the
profile and prints the resulting badge.

With --offline the table is rebuilt from the cached report without any
network access.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := progress.NewPrinter(cmd.OutOrStdout())
		out.Title("Checking add-on compatibility")

		cache, err := openCache()
		if err != nil {
			return err
		}
		manager, err := newManager()
		if err != nil {
			out.Error("No profile: " + err.Error())
			return err
		}
		out.Complete("Profile " + manager.ProfileDir())

		kind := engine.KindRebuild
		if checkOffline {
			kind = engine.KindRefreshTable
		}

		runner := &recordingRunner{runner: newEngine(cache, manager, badge.NewLogSink(appLogger), checkOffline)}
		sched := engine.NewScheduler(ctx, runner, appLogger, cfg.Throttle)
		sched.Enqueue(engine.Job{Kind: kind})
		if err := sched.Wait(ctx); err != nil {
			return err
		}

		if runner.err != nil {
			switch {
			case errors.Is(runner.err, errOffline):
				out.Error("No cached data; run without --offline first")
			case errors.Is(runner.err, report.ErrFetch):
				out.Error("Could not fetch the report")
				out.Detail(runner.err.Error())
			default:
				out.Error(runner.err.Error())
			}
			return runner.err
		}

		table, err := cache.Table()
		if err != nil {
			return err
		}
		printStatus(cmd, table, compat.ReduceStatus(table, cfg.Policy))
		return nil
	},
}

// printStatus prints the badge and its counts. Add-ons missing from the
// report are part of the release-incompatible count.
func printStatus(cmd *cobra.Command, table compat.Table, s compat.Status) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "\n  %s  %d add-on(s)\n", styles.Badge(s.BadgeText, s.BadgeColor), s.Total)
	if s.ReleaseIncompatible > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", styles.ErrorText.Render(fmt.Sprintf("%d incompatible with release", s.ReleaseIncompatible)))
	}
	if n := notListed(table); n > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", styles.WarningText.Render(fmt.Sprintf("%d of them not listed in the report", n)))
	}
	if s.ESROnlyExperiment > 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", styles.WarningText.Render(fmt.Sprintf("%d only work through an experiment", s.ESROnlyExperiment)))
	}
	if s.ReleaseIncompatible == 0 && s.Unknown == 0 && s.ESROnlyExperiment == 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", styles.FormatSuccess("All add-ons work on release"))
	}
}

func notListed(table compat.Table) int {
	n := 0
	for _, r := range table {
		if r.IsUnknown {
			n++
		}
	}
	return n
}

func init() {
	checkCmd.Flags().BoolVar(&checkOffline, "offline", false, "Rebuild from the cached report without network access")
	rootCmd.AddCommand(checkCmd)
}
