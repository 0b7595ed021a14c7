package addons

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultProfilesRoot returns the directory holding the host's profiles.ini.
func DefaultProfilesRoot() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".thunderbird")
}

// FindDefaultProfile resolves the default profile listed in profiles.ini
// under root. Install sections (used by recent hosts) win over the legacy
// Default=1 flag on profile sections.
func FindDefaultProfile(root string) (string, error) {
	f, err := loadINI(filepath.Join(root, "profiles.ini"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no profiles.ini in %s", ErrProfileNotFound, root)
		}
		return "", err
	}

	for _, section := range f.Sections() {
		def := section.Key("Default").String()
		if strings.HasPrefix(section.Name(), "Install") && def != "" {
			return resolveProfilePath(root, def, "1"), nil
		}
	}

	for _, section := range f.Sections() {
		path := section.Key("Path").String()
		if strings.HasPrefix(section.Name(), "Profile") && section.Key("Default").String() == "1" && path != "" {
			return resolveProfilePath(root, path, section.Key("IsRelative").String()), nil
		}
	}

	return "", fmt.Errorf("%w: no default profile in %s", ErrProfileNotFound, root)
}

func resolveProfilePath(root, path, isRelative string) string {
	if isRelative == "0" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
