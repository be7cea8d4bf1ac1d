package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Persisted keys
const (
	KeyCart           = "cart"
	KeyFavorites      = "favorites"
	KeySessions       = "sessions"
	KeyCurrentSession = "current_session"
	KeySearchHistory  = "search_history"
)

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("storage: store is closed")

// Store is a small key/value store holding JSON documents
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Load decodes the value stored under key into a T. Missing keys, read
// failures and corrupt JSON all yield def; Load never fails.
func Load[T any](ctx context.Context, store Store, key string, def T) T {
	if store == nil {
		return def
	}
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		log.Debug("storage read failed, using default", "key", key, "err", err)
		return def
	}
	if !ok || len(data) == 0 {
		return def
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Debug("corrupt stored value, using default", "key", key, "err", err)
		return def
	}
	return v
}

// Save encodes v and writes it under key. Persistence is best effort: a
// failure is logged and reported back only for callers that care.
func Save(ctx context.Context, store Store, key string, v any) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to encode value for storage", "key", key, "err", err)
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		log.Warn("failed to persist value", "key", key, "err", err)
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps values in memory. Used for ephemeral runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
