package compat

// Channel is one of the host release tracks compatibility is reported for.
type Channel string

const (
	ChannelRelease    Channel = "release"
	ChannelNextESR    Channel = "next-esr"
	ChannelCurrentESR Channel = "current-esr"
)

// Channels lists the tracked channels in column order (oldest track first).
var Channels = []Channel{ChannelCurrentESR, ChannelNextESR, ChannelRelease}

// CompatEntry describes one add-on on one channel.
type CompatEntry struct {
	Type         Channel `json:"type"`
	ExtVersion   string  `json:"extVersion,omitempty"` // Minimum compatible add-on version, empty when incompatible
	IsExperiment bool    `json:"isExperiment,omitempty"`
	AppVersion   string  `json:"appVersion,omitempty"` // Host version of the channel, only used for labels
}

// Compatible reports whether the add-on has a compatible version on this channel.
func (e CompatEntry) Compatible() bool {
	return e.ExtVersion != ""
}

// Alternative is a suggested replacement for an incompatible add-on.
// An alternative without ID but with a name and link is a built-in host feature.
type Alternative struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Link string `json:"link,omitempty"`
}

// BuiltIn reports whether the alternative is a feature of the host itself.
func (a Alternative) BuiltIn() bool {
	return a.ID == "" && a.Name != "" && a.Link != ""
}

// ReportAddon is an add-on entry of the remote report.
type ReportAddon struct {
	ID                        string            `json:"id"`
	Name                      string            `json:"name,omitempty"`
	Compat                    []CompatEntry     `json:"compat"`
	Alternatives              []Alternative     `json:"alternatives,omitempty"`
	DedicatedSupportOnRelease bool              `json:"dedicatedSupportOnRelease,omitempty"`
	Icons                     map[string]string `json:"icons,omitempty"`
}

// Report is the remote compatibility report. It is never modified once
// fetched, only replaced.
type Report struct {
	Generated string        `json:"generated"`
	Addons    []ReportAddon `json:"addons"`
}

// Find returns the report entry for an add-on id.
func (r *Report) Find(id string) (ReportAddon, bool) {
	if r == nil {
		return ReportAddon{}, false
	}
	for _, a := range r.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return ReportAddon{}, false
}

// AddonRecord is one entry of the derived compatibility table.
type AddonRecord struct {
	ID                        string            `json:"id"`
	Name                      string            `json:"name"`
	Enabled                   bool              `json:"enabled"`
	Compat                    []CompatEntry     `json:"compat"`
	IsUnknown                 bool              `json:"isUnknown,omitempty"`
	Alternatives              []Alternative     `json:"alternatives,omitempty"`
	DedicatedSupportOnRelease bool              `json:"dedicatedSupportOnRelease,omitempty"`
	Icons                     map[string]string `json:"icons,omitempty"`
}

// Entry returns the compat entry for a channel.
func (r AddonRecord) Entry(ch Channel) (CompatEntry, bool) {
	for _, e := range r.Compat {
		if e.Type == ch {
			return e, true
		}
	}
	return CompatEntry{}, false
}

// Table maps add-on ids to their records.
type Table map[string]AddonRecord

// Clone returns a copy of the table that can be patched without touching t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// NewRecord builds the table record for a locally installed add-on from the
// report. Add-ons missing from the report get an unknown record without
// compatibility data.
func NewRecord(report *Report, id, name string, enabled bool) AddonRecord {
	entry, ok := report.Find(id)
	if !ok {
		return AddonRecord{
			ID:        id,
			Name:      name,
			Enabled:   enabled,
			Compat:    []CompatEntry{},
			IsUnknown: true,
		}
	}

	compat := make([]CompatEntry, len(entry.Compat))
	copy(compat, entry.Compat)

	return AddonRecord{
		ID:                        id,
		Name:                      name,
		Enabled:                   enabled,
		Compat:                    compat,
		Alternatives:              entry.Alternatives,
		DedicatedSupportOnRelease: entry.DedicatedSupportOnRelease,
		Icons:                     entry.Icons,
	}
}
