package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathHonoursXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if got, want := Path(), filepath.Join("/tmp/xdg", "compatctl", "compatctl.log"); got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "compatctl.log")
	var stderr bytes.Buffer

	l, closeFn := newAt(path, false, &stderr)
	l.Info("badge updated", "text", "✓")
	l.Debug("hidden")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "badge updated") {
		t.Fatalf("log file missing entry: %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatal("debug entry written without verbose")
	}
	if stderr.Len() != 0 {
		t.Fatalf("non-verbose logger wrote to stderr: %q", stderr.String())
	}
}

func TestNewVerboseTeesToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compatctl.log")
	var stderr bytes.Buffer

	l, closeFn := newAt(path, true, &stderr)
	l.Debug("scheduler drained")
	closeFn()

	if !strings.Contains(stderr.String(), "scheduler drained") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestNewFallsBackToStderr(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer

	// A regular file in place of the log directory forces the fallback.
	l, closeFn := newAt(filepath.Join(blocker, "compatctl.log"), false, &stderr)
	defer closeFn()
	l.Warn("fetch failed")

	if !strings.Contains(stderr.String(), "fetch failed") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
