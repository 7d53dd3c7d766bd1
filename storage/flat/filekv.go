package flat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shelfworks/tana/storage"
)

// fileKV implements storage.FlatKV as one JSON object persisted to a single
// file: loaded eagerly at open, rewritten synchronously on every Set.
type fileKV struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	values map[string]string
}

var _ storage.FlatKV = (*fileKV)(nil)

// OpenFileKV opens the store backed by the file at path. An unreadable or
// corrupt file starts the store empty rather than failing; the next Set
// rewrites it.
func OpenFileKV(path string, logger *slog.Logger) (storage.FlatKV, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("opening flat store: %w", err)
	}

	kv := &fileKV{
		path:   path,
		logger: logger,
		values: map[string]string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading flat store, starting empty", "path", path, "error", err)
		}
		return kv, nil
	}
	if err := json.Unmarshal(data, &kv.values); err != nil {
		logger.Warn("parsing flat store, starting empty", "path", path, "error", err)
		kv.values = map[string]string{}
	}

	return kv, nil
}

// Get returns the value stored under key, and whether the key exists.
func (f *fileKV) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.values[key]
	return v, ok
}

// Set stores value under key and rewrites the backing file. The in-memory
// value is kept even when the file write fails, so the session keeps
// working off its own state.
func (f *fileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value

	data, err := json.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("encoding flat store: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing flat store: %w", err)
	}
	return nil
}

// memKV is an in-memory FlatKV used when no backing file is available at
// all. Values live only for the process lifetime.
type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

var _ storage.FlatKV = (*memKV)(nil)

// NewMemoryKV returns a FlatKV with no durable backing.
func NewMemoryKV() storage.FlatKV {
	return &memKV{values: map[string]string{}}
}

// Get returns the value stored under key, and whether the key exists.
func (m *memKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key.
func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}
