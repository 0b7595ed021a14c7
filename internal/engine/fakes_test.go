package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/compatctl/internal/addons"
	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/report"
	"github.com/bnema/compatctl/internal/store"
)

const reportFixture = `{
  "generated": "2025-01-10T08:00:00Z",
  "addons": [
    {"id": "a@example.com", "name": "A", "compat": [
      {"type": "current-esr", "extVersion": "1.0", "appVersion": "115.0"},
      {"type": "next-esr", "extVersion": "1.0", "appVersion": "128.0"},
      {"type": "release", "extVersion": "1.1", "appVersion": "134.0"}
    ]},
    {"id": "c@example.com", "name": "C", "compat": [
      {"type": "current-esr", "extVersion": "2.0", "appVersion": "115.0"},
      {"type": "release", "appVersion": "134.0"}
    ]}
  ]
}`

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	raw   string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*report.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var r compat.Report
	if err := json.Unmarshal([]byte(f.raw), &r); err != nil {
		return nil, err
	}
	return &report.Result{Report: &r, Raw: []byte(f.raw)}, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLister struct {
	mu     sync.Mutex
	addons []addons.Addon
	err    error
}

func (l *fakeLister) InstalledAddons(ctx context.Context) ([]addons.Addon, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	out := make([]addons.Addon, len(l.addons))
	copy(out, l.addons)
	return out, nil
}

type fakeBadge struct {
	mu      sync.Mutex
	calls   []string
	text    string
	color   string
	enabled bool
}

func (b *fakeBadge) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.calls = append(b.calls, "text:"+text)
}

func (b *fakeBadge) SetColor(color string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.color = color
	b.calls = append(b.calls, "color:"+color)
}

func (b *fakeBadge) Enable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = true
	b.calls = append(b.calls, "enable")
}

func (b *fakeBadge) Disable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = false
	b.calls = append(b.calls, "disable")
}

func (b *fakeBadge) State() (string, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.color, b.enabled
}

func userExtension(id, name string, enabled bool) addons.Addon {
	return addons.Addon{
		ID:          id,
		Name:        name,
		Enabled:     enabled,
		Type:        addons.TypeExtension,
		InstallType: addons.InstallNormal,
	}
}

type fixture struct {
	engine  *Engine
	cache   *store.Cache
	fetcher *fakeFetcher
	lister  *fakeLister
	badge   *fakeBadge
	now     time.Time
}

func newFixture(t *testing.T, installed ...addons.Addon) *fixture {
	t.Helper()

	cache, err := store.OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache() returned error: %v", err)
	}

	f := &fixture{
		cache:   cache,
		fetcher: &fakeFetcher{raw: reportFixture},
		lister:  &fakeLister{addons: installed},
		badge:   &fakeBadge{},
		now:     time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	f.engine = New(Options{
		Cache:           cache,
		Fetcher:         f.fetcher,
		Lister:          f.lister,
		Badge:           f.badge,
		Logger:          log.New(io.Discard),
		RebuildInterval: 24 * time.Hour,
		Now:             func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) run(t *testing.T, job Job) {
	t.Helper()
	if err := f.engine.Run(context.Background(), job); err != nil {
		t.Fatalf("Run(%s) returned error: %v", job, err)
	}
}

func (f *fixture) table(t *testing.T) compat.Table {
	t.Helper()
	table, err := f.cache.Table()
	if err != nil {
		t.Fatalf("Table() returned error: %v", err)
	}
	return table
}

func (f *fixture) lastCheck(t *testing.T) time.Time {
	t.Helper()
	last, err := f.cache.LastCheck()
	if err != nil {
		t.Fatalf("LastCheck() returned error: %v", err)
	}
	return last
}

func tableKeys(t compat.Table) string {
	return fmt.Sprintf("%v", sortedKeys(t))
}
