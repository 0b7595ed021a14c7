package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/report"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("COMPATCTL_PROFILE", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReportURL != report.DefaultURL {
		t.Errorf("ReportURL = %q", cfg.ReportURL)
	}
	if cfg.RebuildInterval != 24*time.Hour {
		t.Errorf("RebuildInterval = %v", cfg.RebuildInterval)
	}
	if cfg.WatchInterval != 5*time.Second {
		t.Errorf("WatchInterval = %v", cfg.WatchInterval)
	}
	if cfg.Throttle != time.Second {
		t.Errorf("Throttle = %v", cfg.Throttle)
	}
	if cfg.CacheDir != filepath.Join("/tmp/cache", "compatctl") {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Policy.ESROnlyExperiment != compat.SeverityIncompatible {
		t.Errorf("Policy = %+v", cfg.Policy)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMPATCTL_PROFILE", "")
	path := writeConfig(t, `
report_url = "  https://example.org/all.json  "
report_git_url = "https://example.org/reports.git"
report_git_branch = "gh-pages"
profile_dir = "/srv/profile"
cache_dir = "/srv/cache"
rebuild_interval_minutes = 60
watch_interval_seconds = 2
throttle_millis = 0
esr_only_experiment_color = "warning"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReportURL != "https://example.org/all.json" {
		t.Errorf("ReportURL = %q", cfg.ReportURL)
	}
	if cfg.ReportGitURL != "https://example.org/reports.git" || cfg.ReportGitBranch != "gh-pages" {
		t.Errorf("git source = %q %q", cfg.ReportGitURL, cfg.ReportGitBranch)
	}
	if cfg.ReportGitPath != "all.json" {
		t.Errorf("ReportGitPath = %q", cfg.ReportGitPath)
	}
	if cfg.ProfileDir != "/srv/profile" || cfg.CacheDir != "/srv/cache" {
		t.Errorf("dirs = %q %q", cfg.ProfileDir, cfg.CacheDir)
	}
	if cfg.RebuildInterval != time.Hour || cfg.WatchInterval != 2*time.Second {
		t.Errorf("intervals = %v %v", cfg.RebuildInterval, cfg.WatchInterval)
	}
	if cfg.Throttle != 0 {
		t.Errorf("Throttle = %v, want 0", cfg.Throttle)
	}
	if cfg.Policy.ESROnlyExperiment != compat.SeverityWarning {
		t.Errorf("Policy = %+v", cfg.Policy)
	}
}

func TestLoadProfileFromEnvironment(t *testing.T) {
	t.Setenv("COMPATCTL_PROFILE", "/env/profile")
	path := writeConfig(t, `profile_dir = "/file/profile"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfileDir != "/env/profile" {
		t.Fatalf("ProfileDir = %q, want env value", cfg.ProfileDir)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	t.Setenv("COMPATCTL_PROFILE", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `cache_dir = "~/cc"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != filepath.Join(home, "cc") {
		t.Fatalf("CacheDir = %q", cfg.CacheDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("COMPATCTL_PROFILE", "")
	cases := map[string]string{
		"severity": `esr_only_experiment_color = "purple"`,
		"rebuild":  `rebuild_interval_minutes = -1`,
		"watch":    `watch_interval_seconds = -3`,
		"throttle": `throttle_millis = -10`,
		"syntax":   `report_url = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "config") {
				t.Fatalf("error %q lacks context", err)
			}
		})
	}
}
