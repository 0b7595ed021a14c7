package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/logger"
	"github.com/bnema/compatctl/internal/ui/progress"
)

var cleanLogs bool

var cleanCmd = &cobra.Command{
	Use:     "clean",
	Aliases: []string{"c"},
	Short:   "Remove the cached report, table and badge",
	Long: `Removes the compatibility cache (report, add-on table, last check time
and badge). The next check fetches the report again.
Use --logs to also remove the log file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := progress.NewPrinter(cmd.OutOrStdout())
		out.Title("Cleaning cache")

		cache, err := openCache()
		if err != nil {
			out.Error("Failed to open cache: " + err.Error())
			return err
		}

		out.InProgress("Removing cached data")
		if err := cache.Clear(); err != nil {
			out.Error("Failed to clean: " + err.Error())
			return err
		}
		out.Complete("Cache cleared")
		out.Detail(cache.Path())

		if cleanLogs {
			// The log file is still open by this process; unlinking is fine on Unix.
			if err := os.Remove(logger.Path()); err != nil && !os.IsNotExist(err) {
				out.Warning("Could not remove log file: " + err.Error())
			} else {
				out.Complete("Log file removed")
			}
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanLogs, "logs", false, "Also remove the log file")
	rootCmd.AddCommand(cleanCmd)
}
