// Package storage provides the keyed document storage abstraction for exchange records.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists under the requested key.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for keyed document storage. Records are
// opaque byte documents grouped into buckets. Put upserts; Delete of a
// missing record returns ErrNotFound. Primitive operations are atomic per key.
type Repository interface {
	Put(ctx context.Context, bucket string, recordID string, data []byte) error
	Get(ctx context.Context, bucket string, recordID string) ([]byte, error)
	Delete(ctx context.Context, bucket string, recordID string) error
	List(ctx context.Context, bucket string) ([]string, error)
}
