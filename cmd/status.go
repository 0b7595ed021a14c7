package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/ui/styles"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the cached badge without contacting the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}

		table, err := cache.Table()
		if err != nil {
			return err
		}
		if table == nil {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No cached data yet")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nRun: compatctl check")
			return nil
		}

		printStatus(cmd, table, compat.ReduceStatus(table, cfg.Policy))

		last, err := cache.LastCheck()
		if err != nil {
			return err
		}
		if !last.IsZero() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n  %s\n", styles.MutedText.Render("Last checked "+last.Format("2006-01-02 15:04")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
