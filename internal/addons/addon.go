package addons

import "strings"

// InstallType tells how an add-on got into the profile.
type InstallType string

const (
	InstallNormal      InstallType = "normal"      // installed by the user
	InstallDevelopment InstallType = "development" // temporary debug install
	InstallOther       InstallType = "other"       // bundled, system or policy install
)

// TypeExtension is the add-on type of WebExtensions.
const TypeExtension = "extension"

// bundledSuffix marks ids of add-ons shipped with the host itself.
const bundledSuffix = "mozilla.org"

// Addon is an add-on installed in the host profile.
type Addon struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Enabled     bool        `json:"enabled"`
	Type        string      `json:"type"`
	InstallType InstallType `json:"installType"`
}

// IsUserExtension reports whether the add-on is a user installed extension
// that is not bundled with the host. Only those are checked for compatibility.
func IsUserExtension(a Addon) bool {
	return a.InstallType == InstallNormal &&
		a.Type == TypeExtension &&
		!strings.HasSuffix(a.ID, bundledSuffix)
}

// UserExtensions filters a listing down to user installed extensions.
func UserExtensions(all []Addon) []Addon {
	out := make([]Addon, 0, len(all))
	for _, a := range all {
		if IsUserExtension(a) {
			out = append(out, a)
		}
	}
	return out
}

// HostBuildInfo describes the host build the profile was last used with.
type HostBuildInfo struct {
	Version string // e.g. "128.5.0esr"
	BuildID string
}
