package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/petsupply/storefront/internal/domain/pricing"
)

// InMemoryKVStore keeps pricing settings in a process-local map.
// Suitable for single-instance deployments and tests; nothing survives a restart.
type InMemoryKVStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewInMemoryKVStore creates an empty in-memory store
func NewInMemoryKVStore() *InMemoryKVStore {
	return &InMemoryKVStore{entries: make(map[string]string)}
}

// Get returns the value stored under key
func (s *InMemoryKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

// Set stores value under key
func (s *InMemoryKVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *InMemoryKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// List returns a copy of every entry whose key starts with prefix
func (s *InMemoryKVStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range s.entries {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

// Close is a no-op
func (s *InMemoryKVStore) Close() error {
	return nil
}

var _ pricing.SettingsStore = (*InMemoryKVStore)(nil)
