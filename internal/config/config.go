// Package config loads compatctl settings from ~/.config/compatctl/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/report"
)

// Config holds the resolved settings.
type Config struct {
	ReportURL       string
	ReportGitURL    string
	ReportGitBranch string
	ReportGitPath   string
	ProfileDir      string // empty means the host's default profile
	CacheDir        string
	RebuildInterval time.Duration
	WatchInterval   time.Duration
	Throttle        time.Duration
	Policy          compat.Policy
}

const (
	defaultConfigPath     = "~/.config/compatctl/config.toml"
	defaultRebuildMinutes = 24 * 60
	defaultWatchSeconds   = 5
	defaultThrottleMillis = 1000
	defaultReportGitPath  = "all.json"
	profileEnv            = "COMPATCTL_PROFILE"
	xdgConfigEnv          = "XDG_CONFIG_HOME"
	xdgCacheEnv           = "XDG_CACHE_HOME"
)

type rawConfig struct {
	ReportURL              string `toml:"report_url"`
	ReportGitURL           string `toml:"report_git_url"`
	ReportGitBranch        string `toml:"report_git_branch"`
	ReportGitPath          string `toml:"report_git_path"`
	ProfileDir             string `toml:"profile_dir"`
	CacheDir               string `toml:"cache_dir"`
	RebuildIntervalMinutes int    `toml:"rebuild_interval_minutes"`
	WatchIntervalSeconds   int    `toml:"watch_interval_seconds"`
	ThrottleMillis         *int   `toml:"throttle_millis"`
	ESROnlyExperimentColor string `toml:"esr_only_experiment_color"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		ReportURL:       report.DefaultURL,
		ReportGitPath:   defaultReportGitPath,
		ProfileDir:      strings.TrimSpace(os.Getenv(profileEnv)),
		CacheDir:        DefaultCacheDir(),
		RebuildInterval: defaultRebuildMinutes * time.Minute,
		WatchInterval:   defaultWatchSeconds * time.Second,
		Throttle:        defaultThrottleMillis * time.Millisecond,
		Policy:          compat.DefaultPolicy(),
	}
}

// DefaultPath returns the config file location, honouring XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv(xdgConfigEnv); dir != "" {
		return filepath.Join(dir, "compatctl", "config.toml")
	}
	return defaultConfigPath
}

// DefaultCacheDir returns the cache directory, honouring XDG_CACHE_HOME.
func DefaultCacheDir() string {
	cacheDir := os.Getenv(xdgCacheEnv)
	if cacheDir == "" {
		homeDir, _ := os.UserHomeDir()
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, "compatctl")
}

// Load reads the config at path, falling back to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ReportURL); v != "" {
		cfg.ReportURL = v
	}
	cfg.ReportGitURL = strings.TrimSpace(raw.ReportGitURL)
	cfg.ReportGitBranch = strings.TrimSpace(raw.ReportGitBranch)
	if v := strings.TrimSpace(raw.ReportGitPath); v != "" {
		cfg.ReportGitPath = v
	}

	// The environment wins over the file so one config serves several profiles.
	if cfg.ProfileDir == "" {
		if v := strings.TrimSpace(raw.ProfileDir); v != "" {
			cfg.ProfileDir = mustExpand(v)
		}
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		cfg.CacheDir = mustExpand(v)
	}

	switch {
	case raw.RebuildIntervalMinutes < 0:
		return Config{}, fmt.Errorf("parse config: rebuild_interval_minutes must be positive")
	case raw.RebuildIntervalMinutes > 0:
		cfg.RebuildInterval = time.Duration(raw.RebuildIntervalMinutes) * time.Minute
	}

	switch {
	case raw.WatchIntervalSeconds < 0:
		return Config{}, fmt.Errorf("parse config: watch_interval_seconds must be positive")
	case raw.WatchIntervalSeconds > 0:
		cfg.WatchInterval = time.Duration(raw.WatchIntervalSeconds) * time.Second
	}

	if raw.ThrottleMillis != nil {
		if *raw.ThrottleMillis < 0 {
			return Config{}, fmt.Errorf("parse config: throttle_millis must not be negative")
		}
		cfg.Throttle = time.Duration(*raw.ThrottleMillis) * time.Millisecond
	}

	severity, err := compat.ParseSeverity(raw.ESROnlyExperimentColor)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: esr_only_experiment_color: %w", err)
	}
	cfg.Policy = compat.Policy{ESROnlyExperiment: severity}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath())
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
