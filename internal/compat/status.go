package compat

import (
	"fmt"
	"sort"
	"strings"
)

// Badge colors.
const (
	ColorCompatible   = "#27ae60"
	ColorIncompatible = "#c0392b"
	ColorWarning      = "#e67e22"
	ColorPending      = "#2980b9"
)

// Badge texts that are not counts.
const (
	BadgeOK      = "✓"
	BadgePending = "…"
)

// Severity selects how the badge flags add-ons that only work through an
// experiment without dedicated release support.
type Severity string

const (
	SeverityIncompatible Severity = "incompatible"
	SeverityWarning      Severity = "warning"
)

// Policy configures the badge reduction.
type Policy struct {
	ESROnlyExperiment Severity
}

// DefaultPolicy flags ESR-only experiments with the incompatible color.
func DefaultPolicy() Policy {
	return Policy{ESROnlyExperiment: SeverityIncompatible}
}

// ParseSeverity maps a configured name onto a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case "", SeverityIncompatible:
		return SeverityIncompatible, nil
	case SeverityWarning:
		return SeverityWarning, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want %q or %q)", s, SeverityIncompatible, SeverityWarning)
	}
}

func (p Policy) esrOnlyColor() string {
	if p.ESROnlyExperiment == SeverityWarning {
		return ColorWarning
	}
	return ColorIncompatible
}

// Class is the risk class of a single add-on.
type Class int

const (
	ClassCompatible Class = iota
	ClassReleaseIncompatible
	ClassESROnlyExperiment
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassReleaseIncompatible:
		return "release-incompatible"
	case ClassESROnlyExperiment:
		return "esr-only-experiment"
	case ClassUnknown:
		return "unknown"
	default:
		return "compatible"
	}
}

// Classify returns the risk class of an add-on. Classes are checked in
// priority order, release incompatibility first.
func Classify(r AddonRecord) Class {
	release, ok := r.Entry(ChannelRelease)
	switch {
	case !ok || !release.Compatible():
		return ClassReleaseIncompatible
	case release.IsExperiment && !r.DedicatedSupportOnRelease:
		return ClassESROnlyExperiment
	case r.IsUnknown:
		return ClassUnknown
	default:
		return ClassCompatible
	}
}

// Status is the reduced badge state of a table.
type Status struct {
	Total               int    `json:"total"`
	ReleaseIncompatible int    `json:"releaseIncompatible"`
	ESROnlyExperiment   int    `json:"esrOnlyExperiment"`
	Unknown             int    `json:"unknown"`
	BadgeText           string `json:"badgeText"`
	BadgeColor          string `json:"badgeColor"`
}

// ReduceStatus counts the risk classes of the table and derives the badge.
func ReduceStatus(t Table, p Policy) Status {
	s := Status{Total: len(t)}
	for _, r := range t {
		switch Classify(r) {
		case ClassReleaseIncompatible:
			s.ReleaseIncompatible++
		case ClassESROnlyExperiment:
			s.ESROnlyExperiment++
		case ClassUnknown:
			s.Unknown++
		}
	}

	switch {
	case s.ReleaseIncompatible == 0 && s.Unknown == 0 && s.ESROnlyExperiment == 0:
		s.BadgeText, s.BadgeColor = BadgeOK, ColorCompatible
	case s.ReleaseIncompatible == 0 && s.Unknown == 0:
		s.BadgeText, s.BadgeColor = BadgeOK, p.esrOnlyColor()
	default:
		s.BadgeText = fmt.Sprintf("-%d", s.ReleaseIncompatible+s.Unknown)
		s.BadgeColor = ColorIncompatible
	}
	return s
}

// Rank weights, summed per add-on.
const (
	RankReleaseCertain   = 8
	RankReleaseUncertain = 4
	RankNextESR          = 2
	RankCurrentESR       = 1
	RankDisabled         = 16
)

// Rank scores an add-on for the detail view. Lower ranks are more concerning.
func Rank(r AddonRecord) int {
	rank := 0
	if e, ok := r.Entry(ChannelRelease); ok && e.Compatible() {
		if !e.IsExperiment || r.DedicatedSupportOnRelease {
			rank += RankReleaseCertain
		} else {
			rank += RankReleaseUncertain
		}
	}
	if e, ok := r.Entry(ChannelNextESR); ok && e.Compatible() {
		rank += RankNextESR
	}
	if e, ok := r.Entry(ChannelCurrentESR); ok && e.Compatible() {
		rank += RankCurrentESR
	}
	if !r.Enabled {
		rank += RankDisabled
	}
	return rank
}

// RankedAddon pairs a record with its rank.
type RankedAddon struct {
	Record AddonRecord
	Rank   int
}

// Ranked returns the table in ascending rank order. Equal ranks are ordered
// by name, then id, so the order is stable across runs.
func Ranked(t Table) []RankedAddon {
	out := make([]RankedAddon, 0, len(t))
	for _, r := range t {
		out = append(out, RankedAddon{Record: r, Rank: Rank(r)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		ni, nj := strings.ToLower(out[i].Record.Name), strings.ToLower(out[j].Record.Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Record.ID < out[j].Record.ID
	})
	return out
}
