// Package storage provides the key-value port that reader state persists
// through, with memory, file and redis implementations. Values are whole
// per-document blobs so each write is atomic from the caller's view.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Store is the durable key-value port.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStore keeps values in memory. Used for ephemeral quiz state and as
// the in-test stand-in for durable backends.
type MemoryStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte{}, value...)
	return nil
}

// FileStore persists each key as one JSON blob file under a state directory.
// This is the default device-local backend.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the state directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write-then-rename so a crash mid-write never leaves a torn blob.
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// FallbackStore wraps a backend and switches to in-memory operation for the
// rest of the session after the first backend failure. Callers are never
// blocked by a broken backend; state written after degradation does not
// survive a restart.
type FallbackStore struct {
	backend  Store
	memory   *MemoryStore
	mu       sync.Mutex
	degraded bool
}

// NewFallbackStore wraps backend with session-local degradation.
func NewFallbackStore(backend Store) *FallbackStore {
	return &FallbackStore{backend: backend, memory: NewMemoryStore()}
}

func (s *FallbackStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.isDegraded() {
		return s.memory.Get(ctx, key)
	}
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.degrade("get", key, err)
		return s.memory.Get(ctx, key)
	}
	return data, ok, nil
}

func (s *FallbackStore) Set(ctx context.Context, key string, value []byte) error {
	if s.isDegraded() {
		return s.memory.Set(ctx, key, value)
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.degrade("set", key, err)
		return s.memory.Set(ctx, key, value)
	}
	return nil
}

// Degraded reports whether the store has fallen back to memory.
func (s *FallbackStore) Degraded() bool {
	return s.isDegraded()
}

func (s *FallbackStore) isDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *FallbackStore) degrade(op, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return
	}
	s.degraded = true
	slog.Warn("storage backend failed, continuing in memory", "op", op, "key", key, "error", err)
}
