package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileName is the name of the cache document inside the cache directory.
const FileName = "compat-cache.json"

const lockName = "compat-cache.lock"

// KV is a JSON document on disk holding independent keys. Every write
// replaces the whole document, so readers never see a half-applied update.
//
// Several processes may share the document (a watch daemon and one-shot
// commands). Writers hold an advisory file lock and merge into the document
// as it is on disk; readers reload it whenever another process replaced it.
type KV struct {
	path string
	lock *flock.Flock

	mu     sync.Mutex
	data   map[string]json.RawMessage
	loaded os.FileInfo // nil when the document did not exist at last load
}

// Open loads the key-value document from dir, starting empty when the file
// does not exist yet.
func Open(dir string) (*KV, error) {
	kv := &KV{
		path: filepath.Join(dir, FileName),
		lock: flock.New(filepath.Join(dir, lockName)),
		data: make(map[string]json.RawMessage),
	}
	if err := kv.reload(false); err != nil {
		return nil, err
	}
	return kv, nil
}

// Path returns the location of the cache document.
func (kv *KV) Path() string {
	return kv.path
}

// Get decodes the value of key into dst. When the key is absent dst is left
// untouched, so callers pass their default in dst.
func (kv *KV) Get(key string, dst any) (bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if err := kv.reload(false); err != nil {
		return false, err
	}

	raw, ok := kv.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores all values in a single write of the document.
func (kv *KV) Set(values map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(values))
	for key, v := range values {
		raw, err := encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", key, err)
		}
		encoded[key] = raw
	}

	return kv.update(func(next map[string]json.RawMessage) {
		for k, v := range encoded {
			next[k] = v
		}
	})
}

// Delete removes keys and writes the document.
func (kv *KV) Delete(keys ...string) error {
	return kv.update(func(next map[string]json.RawMessage) {
		for _, k := range keys {
			delete(next, k)
		}
	})
}

// update applies change to the document as currently stored on disk and
// writes it back, holding the file lock throughout.
func (kv *KV) update(change func(map[string]json.RawMessage)) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(kv.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := kv.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock cache: %w", err)
	}
	defer func() { _ = kv.lock.Unlock() }()

	if err := kv.reload(true); err != nil {
		return err
	}

	next := make(map[string]json.RawMessage, len(kv.data))
	for k, v := range kv.data {
		next[k] = v
	}
	change(next)

	if err := kv.write(next); err != nil {
		return err
	}
	kv.data = next
	kv.loaded, _ = os.Stat(kv.path)
	return nil
}

// reload reads the document again if another writer replaced it since the
// last load, or unconditionally when force is set. Callers hold kv.mu.
func (kv *KV) reload(force bool) error {
	info, err := os.Stat(kv.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		kv.data = make(map[string]json.RawMessage)
		kv.loaded = nil
		return nil
	}
	if !force && kv.loaded != nil && sameVersion(kv.loaded, info) {
		return nil
	}

	raw, err := os.ReadFile(kv.path)
	if err != nil {
		if os.IsNotExist(err) {
			kv.data = make(map[string]json.RawMessage)
			kv.loaded = nil
			return nil
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse cache %s: %w", kv.path, err)
	}
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	kv.data = data
	kv.loaded = info
	return nil
}

// sameVersion reports whether two stats describe the same write. Writes
// rename a fresh file into place, so a new write is always a new file.
func sameVersion(a, b os.FileInfo) bool {
	return os.SameFile(a, b) && a.ModTime().Equal(b.ModTime()) && a.Size() == b.Size()
}

// encode marshals v without HTML escaping, so stored strings keep their
// exact bytes.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (kv *KV) write(data map[string]json.RawMessage) error {
	dir := filepath.Dir(kv.path)

	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	// Write next to the target and rename over it.
	tmp, err := os.CreateTemp(dir, ".compat-cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), kv.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
