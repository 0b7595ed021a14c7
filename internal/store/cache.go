package store

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bnema/compatctl/internal/compat"
)

// Keys of the cache document.
const (
	KeyLastCheck = "lastCheckTimestamp"
	KeyReport    = "reportData"
	KeyTable     = "addonData"
	KeyBadge     = "badge"
)

// BadgeState is the last badge written by the engine.
type BadgeState struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Cache is the typed view of the compatibility cache.
type Cache struct {
	kv *KV
}

// NewCache wraps a key-value document.
func NewCache(kv *KV) *Cache {
	return &Cache{kv: kv}
}

// OpenCache opens the cache document in dir.
func OpenCache(dir string) (*Cache, error) {
	kv, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return NewCache(kv), nil
}

// Path returns the location of the cache document.
func (c *Cache) Path() string {
	return c.kv.Path()
}

// LastCheck returns when the report was last fetched. The zero time means
// it never was.
func (c *Cache) LastCheck() (time.Time, error) {
	var millis int64
	if _, err := c.kv.Get(KeyLastCheck, &millis); err != nil {
		return time.Time{}, err
	}
	if millis == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(millis), nil
}

// RawReport returns the cached report document exactly as fetched, nil when
// absent. The document is kept as a JSON string so its bytes survive
// re-encoding of the cache.
func (c *Cache) RawReport() (json.RawMessage, error) {
	var doc string
	if _, err := c.kv.Get(KeyReport, &doc); err != nil {
		return nil, err
	}
	if doc == "" {
		return nil, nil
	}
	return json.RawMessage(doc), nil
}

// Report returns the parsed cached report, nil when absent.
func (c *Cache) Report() (*compat.Report, error) {
	raw, err := c.RawReport()
	if err != nil || raw == nil {
		return nil, err
	}
	var report compat.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to parse cached report: %w", err)
	}
	return &report, nil
}

// SetRebuilt stores a fetched report, its fetch time and the table built
// from it in one write, so the table never lags behind the report.
func (c *Cache) SetRebuilt(raw []byte, checkedAt time.Time, t compat.Table) error {
	if err := validReport(raw); err != nil {
		return err
	}
	if t == nil {
		t = compat.Table{}
	}
	return c.kv.Set(map[string]any{
		KeyReport:    string(raw),
		KeyLastCheck: checkedAt.UnixMilli(),
		KeyTable:     t,
	})
}

func validReport(raw []byte) error {
	if !utf8.Valid(raw) || !json.Valid(raw) {
		return fmt.Errorf("refusing to cache invalid report document")
	}
	return nil
}

// Table returns the cached compatibility table, nil when absent.
func (c *Cache) Table() (compat.Table, error) {
	var table compat.Table
	if _, err := c.kv.Get(KeyTable, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// SetTable replaces the cached compatibility table.
func (c *Cache) SetTable(t compat.Table) error {
	if t == nil {
		t = compat.Table{}
	}
	return c.kv.Set(map[string]any{KeyTable: t})
}

// Badge returns the last badge written, if any.
func (c *Cache) Badge() (BadgeState, bool, error) {
	var b BadgeState
	found, err := c.kv.Get(KeyBadge, &b)
	return b, found, err
}

// SetBadge records the badge currently shown.
func (c *Cache) SetBadge(b BadgeState) error {
	return c.kv.Set(map[string]any{KeyBadge: b})
}

// Clear drops everything cached.
func (c *Cache) Clear() error {
	return c.kv.Delete(KeyLastCheck, KeyReport, KeyTable, KeyBadge)
}
