// Package memory provides a thread-safe in-memory blob store for tests.
package memory

import (
	"context"
	"sync"

	"exgate/blob"
)

// Store implements blob.Store in memory.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

var _ blob.Store = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

func (s *Store) Write(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[bucket]; !ok {
		s.data[bucket] = make(map[string][]byte)
	}
	s.data[bucket][key] = append([]byte(nil), data...)
	return nil
}

// Get returns a stored object, for test assertions.
func (s *Store) Get(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys returns all object keys in a bucket, for test assertions.
func (s *Store) Keys(bucket string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data[bucket] {
		keys = append(keys, k)
	}
	return keys
}
