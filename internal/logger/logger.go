// Package logger builds the charmbracelet/log logger shared by every command.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	appDir   = "compatctl"
	fileName = "compatctl.log"
)

func init() {
	// Silence the default charmbracelet/log logger; commands log through New.
	log.SetLevel(log.FatalLevel)
}

// Path returns the log file location under XDG_CACHE_HOME.
func Path() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		homeDir, _ := os.UserHomeDir()
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, appDir, fileName)
}

// New opens the log file and returns a logger writing to it.
// When verbose is true, logs also go to stderr at debug level.
// If the file cannot be opened the logger falls back to stderr.
// The returned close func is never nil.
func New(verbose bool) (*log.Logger, func()) {
	return newAt(Path(), verbose, os.Stderr)
}

func newAt(path string, verbose bool, stderr io.Writer) (*log.Logger, func()) {
	noop := func() {}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fallback(stderr, verbose), noop
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fallback(stderr, verbose), noop
	}

	var output io.Writer = file
	if verbose {
		output = io.MultiWriter(file, stderr)
	}

	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}

	return l, func() { _ = file.Close() }
}

func fallback(stderr io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}
