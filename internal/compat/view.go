package compat

import "github.com/bnema/compatctl/internal/version"

// CellState is the state of one add-on on one channel column.
type CellState int

const (
	CellNotListed CellState = iota
	CellCompatible
	CellExperimentOnly // compatible on release, but only through an unsupported experiment
	CellIncompatible
)

// Cell is one channel column of a detail row.
type Cell struct {
	State      CellState
	ExtVersion string
	Experiment bool
}

// Note is the secondary line shown under an add-on name.
type Note int

const (
	NoteNone Note = iota
	NoteReleaseExperiment
	NoteESROnlyExperiment
	NoteAlternative
	NoteNotListed
)

// Column is a channel column of the detail view, labelled with the host
// version the channel currently ships.
type Column struct {
	Channel    Channel
	AppVersion string
}

// Row is one add-on of the detail view.
type Row struct {
	Record      AddonRecord
	Rank        int
	Class       Class
	Note        Note
	Alternative *Alternative
	Cells       map[Channel]Cell
}

// View is the ranked detail view of a table.
type View struct {
	Generated string
	Columns   []Column
	Rows      []Row
}

// Column returns the column of a channel, if any add-on reports it.
func (v View) Column(ch Channel) (Column, bool) {
	for _, c := range v.Columns {
		if c.Channel == ch {
			return c, true
		}
	}
	return Column{}, false
}

// BuildView ranks the table and resolves cells, notes and alternatives. The
// report is only read to check alternatives and may be nil.
func BuildView(t Table, report *Report) View {
	v := View{}
	if report != nil {
		v.Generated = report.Generated
	}

	labels := make(map[Channel]string)
	for _, ranked := range Ranked(t) {
		r := ranked.Record
		class := Classify(r)
		esrOnly := class == ClassESROnlyExperiment

		row := Row{
			Record: r,
			Rank:   ranked.Rank,
			Class:  class,
			Cells:  make(map[Channel]Cell, len(r.Compat)),
		}

		for _, e := range r.Compat {
			cell := Cell{ExtVersion: e.ExtVersion, Experiment: e.IsExperiment}
			switch {
			case !e.Compatible():
				cell.State = CellIncompatible
			case e.Type == ChannelRelease && esrOnly:
				cell.State = CellExperimentOnly
			default:
				cell.State = CellCompatible
			}
			row.Cells[e.Type] = cell
			labels[e.Type] = e.AppVersion
		}

		if release, ok := r.Entry(ChannelRelease); ok && release.IsExperiment && r.DedicatedSupportOnRelease {
			row.Note = NoteReleaseExperiment
		}
		if esrOnly {
			row.Note = NoteESROnlyExperiment
		}
		if class == ClassReleaseIncompatible {
			if alt, ok := FindAlternative(r, report); ok {
				row.Note = NoteAlternative
				row.Alternative = &alt
			}
		}
		if r.IsUnknown {
			row.Note = NoteNotListed
		}

		v.Rows = append(v.Rows, row)
	}

	for _, ch := range Channels {
		if label, ok := labels[ch]; ok {
			v.Columns = append(v.Columns, Column{Channel: ch, AppVersion: label})
		}
	}
	return v
}

// FindAlternative returns the first suggested replacement that works on the
// release channel: either a built-in host feature or an add-on the report
// lists as release compatible.
func FindAlternative(r AddonRecord, report *Report) (Alternative, bool) {
	for _, alt := range r.Alternatives {
		if alt.BuiltIn() {
			return alt, true
		}
		entry, ok := report.Find(alt.ID)
		if !ok {
			continue
		}
		for _, e := range entry.Compat {
			if e.Type == ChannelRelease && e.Compatible() {
				// A match without a name has nothing to show.
				return alt, alt.Name != ""
			}
		}
	}
	return Alternative{}, false
}

// Verdict is the overall outcome shown next to the detail view.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictCompatible
	VerdictIncompatible
)

// Suggestion tells the user what to do with their host installation.
type Suggestion int

const (
	SuggestNothing Suggestion = iota
	SuggestUpgradeToRelease
	SuggestStayOnESRUnsupportedExperiments
	SuggestMoveBackToESRUnsupportedExperiments
	SuggestStayOnESRIncompatible
	SuggestMoveBackToESRIncompatible
)

// Advice is the host-level recommendation for a table.
type Advice struct {
	Verdict    Verdict
	Suggestion Suggestion
	OnRelease  bool
}

// Advise compares the running host build with the release channel and
// recommends whether to move to, stay on or leave the release channel.
// Without a release column the host is never considered to be on release.
func Advise(v View, hostVersion string) Advice {
	var releaseIncompatible, esrOnly int
	for _, row := range v.Rows {
		release, ok := row.Record.Entry(ChannelRelease)
		if !ok || !release.Compatible() {
			releaseIncompatible++
		}
		if ok && release.IsExperiment && !row.Record.DedicatedSupportOnRelease {
			esrOnly++
		}
	}

	a := Advice{}
	if col, ok := v.Column(ChannelRelease); ok && col.AppVersion != "" && hostVersion != "" {
		a.OnRelease = version.AtLeast(hostVersion, col.AppVersion)
	}

	if len(v.Rows) == 0 {
		return a
	}

	switch {
	case releaseIncompatible == 0 && esrOnly == 0 && !a.OnRelease:
		a.Verdict, a.Suggestion = VerdictCompatible, SuggestUpgradeToRelease
	case releaseIncompatible == 0 && esrOnly > 0:
		a.Verdict = VerdictIncompatible
		a.Suggestion = SuggestStayOnESRUnsupportedExperiments
		if a.OnRelease {
			a.Suggestion = SuggestMoveBackToESRUnsupportedExperiments
		}
	case releaseIncompatible > 0:
		a.Verdict = VerdictIncompatible
		a.Suggestion = SuggestStayOnESRIncompatible
		if a.OnRelease {
			a.Suggestion = SuggestMoveBackToESRIncompatible
		}
	}
	return a
}
