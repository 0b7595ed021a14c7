package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/compat"
)

func TestPrintStatusCountsUnlistedAsIncompatible(t *testing.T) {
	report := &compat.Report{Addons: []compat.ReportAddon{{ID: "a@x", Compat: []compat.CompatEntry{
		{Type: compat.ChannelRelease, ExtVersion: "1.0", AppVersion: "130.0"},
	}}}}
	table := compat.Table{
		"a@x": compat.NewRecord(report, "a@x", "Alpha", true),
		"u@x": compat.NewRecord(report, "u@x", "Mystery", true),
	}

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	printStatus(c, table, compat.ReduceStatus(table, compat.DefaultPolicy()))

	out := buf.String()
	for _, want := range []string{"-1", "2 add-on(s)", "1 incompatible with release", "1 of them not listed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "All add-ons work") {
		t.Errorf("unexpected success line:\n%s", out)
	}
}
