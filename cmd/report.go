package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/ui/styles"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"r"},
	Short:   "Show the ranked compatibility table of the cached data",
	Long: `Shows every add-on of the profile with its compatibility on each
channel, worst first, followed by a recommendation for the host install.
Reads the cache only; run "compatctl check" to refresh it.`,
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
		r, err := cache.Report()
		if err != nil {
			return err
		}

		view := compat.BuildView(table, r)

		var hostVersion string
		if manager, err := newManager(); err != nil {
			appLogger.Warn("Cannot resolve profile for host advice", "error", err)
		} else if build, err := manager.HostBuild(); err != nil {
			appLogger.Warn("Cannot read host build", "error", err)
		} else {
			hostVersion = build.Version
		}

		writeView(cmd.OutOrStdout(), view)
		writeAdvice(cmd.OutOrStdout(), compat.Advise(view, hostVersion), hostVersion)
		return nil
	},
}

func channelLabel(c compat.Column) string {
	var name string
	switch c.Channel {
	case compat.ChannelCurrentESR:
		name = "CURRENT ESR"
	case compat.ChannelNextESR:
		name = "NEXT ESR"
	default:
		name = "RELEASE"
	}
	if c.AppVersion != "" {
		name += " " + c.AppVersion
	}
	return name
}

func noteText(row compat.Row) string {
	switch row.Note {
	case compat.NoteNotListed:
		return "not listed in the compatibility report"
	case compat.NoteAlternative:
		if row.Alternative.BuiltIn() {
			return "built-in alternative: " + row.Alternative.Name + " (" + row.Alternative.Link + ")"
		}
		return "alternative: " + row.Alternative.Name
	case compat.NoteESROnlyExperiment:
		return "uses an experiment, unsupported on release"
	case compat.NoteReleaseExperiment:
		return "uses an experiment, supported on release"
	default:
		return ""
	}
}

func writeView(out io.Writer, v compat.View) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprint(w, styles.ColumnHeader.Render("ADD-ON"))
	for _, c := range v.Columns {
		_, _ = fmt.Fprintf(w, "\t%s", styles.ColumnHeader.Render(channelLabel(c)))
	}
	_, _ = fmt.Fprintln(w)

	for _, row := range v.Rows {
		name := row.Record.Name
		if name == "" {
			name = row.Record.ID
		}
		if !row.Record.Enabled {
			name += styles.AddonVersion.Render(" (disabled)")
		}
		_, _ = fmt.Fprint(w, styles.AddonName.Render(name))
		for _, c := range v.Columns {
			_, _ = fmt.Fprintf(w, "\t%s", styles.Cell(row.Cells[c.Channel]))
		}
		_, _ = fmt.Fprintln(w)

		if note := noteText(row); note != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", styles.AddonNote.Render(note))
		}
	}
	_ = w.Flush()

	if v.Generated != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", styles.MutedText.Render("Report generated "+v.Generated))
	}
}

func writeAdvice(out io.Writer, a compat.Advice, hostVersion string) {
	if hostVersion != "" {
		channel := "an ESR"
		if a.OnRelease {
			channel = "the release"
		}
		_, _ = fmt.Fprintf(out, "%s\n", styles.MutedText.Render(fmt.Sprintf("Host %s is on %s channel", hostVersion, channel)))
	}

	var msg string
	switch a.Suggestion {
	case compat.SuggestUpgradeToRelease:
		msg = styles.FormatSuccess("All add-ons work on release: you can upgrade to the release channel")
	case compat.SuggestStayOnESRUnsupportedExperiments:
		msg = styles.FormatWarning("Some add-ons rely on experiments unsupported on release: stay on ESR")
	case compat.SuggestMoveBackToESRUnsupportedExperiments:
		msg = styles.FormatWarning("Some add-ons rely on experiments unsupported on release: consider moving back to ESR")
	case compat.SuggestStayOnESRIncompatible:
		msg = styles.FormatError("Some add-ons do not work on release: stay on ESR")
	case compat.SuggestMoveBackToESRIncompatible:
		msg = styles.FormatError("Some add-ons do not work on release: consider moving back to ESR")
	}
	if msg != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", msg)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
