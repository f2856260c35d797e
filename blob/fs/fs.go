// Package fs provides a filesystem-backed blob store.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"exgate/blob"
)

// Store implements blob.Store on the local filesystem. Objects are written
// to <root>/<bucket>/<key> with restrictive permissions.
type Store struct {
	root string
}

var _ blob.Store = (*Store)(nil)

// NewStore returns a Store rooted at the given directory, creating it if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving blob root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Write(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing blob %s/%s: %w", bucket, key, err)
	}
	return nil
}

// resolve maps a bucket/key pair onto a path under root, rejecting keys
// that would escape the bucket directory.
func (s *Store) resolve(bucket, key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, bucket, cleaned), nil
}
