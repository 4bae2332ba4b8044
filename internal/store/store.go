// Package store defines the key/value persistence port used for schedule
// history, titles, owners, votes and user preferences.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store is a string-keyed byte store.
type Store interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Batcher is implemented by stores that can write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// SetAll writes entries in one batch when s supports it, otherwise one by one.
func SetAll(ctx context.Context, s Store, entries map[string][]byte) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, entries)
	}
	for k, v := range entries {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// ErrCorrupted marks a stored value that could not be decoded.
type ErrCorrupted struct {
	Key string
	Err error
}

func (e *ErrCorrupted) Error() string {
	return fmt.Sprintf("corrupted entry %q: %v", e.Key, e.Err)
}

func (e *ErrCorrupted) Unwrap() error { return e.Err }

// GetJSON reads key and decodes it into a T.
// ok is false when the key is absent. A value that fails to decode is
// reported as *ErrCorrupted so callers can treat it as absent.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, &ErrCorrupted{Key: key, Err: err}
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns the value for key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// SetMany stores several entries under one lock.
func (m *Memory) SetMany(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the keys starting with prefix, sorted.
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
