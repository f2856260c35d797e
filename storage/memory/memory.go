// Package memory provides a thread-safe in-memory implementation of storage.Repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"exgate/storage"
)

// Repository is a thread-safe in-memory implementation of storage.Repository.
// Suitable for testing, demos, and single-process use cases.
type Repository struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]map[string][]byte)}
}

func (r *Repository) Put(ctx context.Context, bucket, recordID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[bucket]; !ok {
		r.data[bucket] = make(map[string][]byte)
	}
	r.data[bucket][recordID] = append([]byte(nil), data...)
	return nil
}

func (r *Repository) Get(ctx context.Context, bucket, recordID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	records, ok := r.data[bucket]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, recordID, storage.ErrNotFound)
	}
	data, ok := records[recordID]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, recordID, storage.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (r *Repository) Delete(ctx context.Context, bucket, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	records, ok := r.data[bucket]
	if !ok {
		return fmt.Errorf("%s/%s: %w", bucket, recordID, storage.ErrNotFound)
	}
	if _, ok := records[recordID]; !ok {
		return fmt.Errorf("%s/%s: %w", bucket, recordID, storage.ErrNotFound)
	}
	delete(records, recordID)
	return nil
}

func (r *Repository) List(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id := range r.data[bucket] {
		ids = append(ids, id)
	}
	return ids, nil
}
