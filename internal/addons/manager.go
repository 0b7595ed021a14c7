package addons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"
)

var (
	ErrProfileNotFound = errors.New("host profile not found")
	ErrNoHostVersion   = errors.New("host version unknown")
)

const (
	extensionsFile    = "extensions.json"
	compatibilityFile = "compatibility.ini"
)

// Manager reads add-on and host information from a host profile directory.
type Manager struct {
	profileDir string
	log        *log.Logger
}

// NewManager creates a manager for the given profile directory
func NewManager(profileDir string, logger *log.Logger) *Manager {
	return &Manager{
		profileDir: profileDir,
		log:        logger,
	}
}

// ProfileDir returns the profile directory the manager reads from
func (m *Manager) ProfileDir() string {
	return m.profileDir
}

// extensionsDB is the subset of the profile's extensions.json we read.
type extensionsDB struct {
	Addons []struct {
		ID            string `json:"id"`
		Type          string `json:"type"`
		Version       string `json:"version"`
		Active        bool   `json:"active"`
		Location      string `json:"location"`
		DefaultLocale struct {
			Name string `json:"name"`
		} `json:"defaultLocale"`
	} `json:"addons"`
}

// InstalledAddons returns every add-on registered in the profile, sorted by id.
func (m *Manager) InstalledAddons(ctx context.Context) ([]Addon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(m.profileDir, extensionsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", extensionsFile, err)
	}

	var db extensionsDB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", extensionsFile, err)
	}

	addons := make([]Addon, 0, len(db.Addons))
	for _, entry := range db.Addons {
		name := entry.DefaultLocale.Name
		if name == "" {
			name = entry.ID
		}
		addons = append(addons, Addon{
			ID:          entry.ID,
			Name:        name,
			Version:     entry.Version,
			Enabled:     entry.Active,
			Type:        entry.Type,
			InstallType: installTypeFor(entry.Location),
		})
	}

	sort.Slice(addons, func(i, j int) bool {
		return addons[i].ID < addons[j].ID
	})

	m.log.Debug("Read installed add-ons", "profile", m.profileDir, "count", len(addons))
	return addons, nil
}

func installTypeFor(location string) InstallType {
	switch location {
	case "app-profile":
		return InstallNormal
	case "temporary":
		return InstallDevelopment
	default:
		return InstallOther
	}
}

// HostBuild returns the host version recorded in the profile's
// compatibility.ini ("LastVersion=128.5.0_20241119150916/20241119150916").
func (m *Manager) HostBuild() (HostBuildInfo, error) {
	path := filepath.Join(m.profileDir, compatibilityFile)
	f, err := loadINI(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return HostBuildInfo{}, fmt.Errorf("%w: %s missing", ErrNoHostVersion, compatibilityFile)
		}
		return HostBuildInfo{}, err
	}

	last := strings.TrimSpace(f.Section("Compatibility").Key("LastVersion").String())
	if last == "" {
		return HostBuildInfo{}, fmt.Errorf("%w: no LastVersion in %s", ErrNoHostVersion, compatibilityFile)
	}

	info := HostBuildInfo{Version: last}
	if v, rest, ok := strings.Cut(last, "_"); ok {
		info.Version = v
		info.BuildID, _, _ = strings.Cut(rest, "/")
	}
	return info, nil
}

// loadINI parses a host ini file. Values are taken verbatim: profile paths
// may contain characters ini treats as comment markers.
func loadINI(path string) (*ini.File, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return f, nil
}
