package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"exgate/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exgate-test.db")
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestBBoltRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		if err := s.Put(ctx, "sessions", "s1", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := s.Get(ctx, "sessions", "s1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"a":1}` {
			t.Errorf("expected %q, got %q", `{"a":1}`, got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, "sessions", "no-such-record")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetMissingBucket", func(t *testing.T) {
		_, err := s.Get(ctx, "no-such-bucket", "s1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		if err := s.Put(ctx, "sessions", "s2", []byte("v1")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Put(ctx, "sessions", "s2", []byte("v2")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := s.Get(ctx, "sessions", "s2")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("expected %q, got %q", "v2", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Put(ctx, "sessions", "s3", []byte("x")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Delete(ctx, "sessions", "s3"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Get(ctx, "sessions", "s3"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := s.Delete(ctx, "sessions", "never-existed"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := s.Put(ctx, "reports", "r1", []byte("x")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Put(ctx, "reports", "r2", []byte("y")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		ids, err := s.List(ctx, "reports")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("expected 2 ids, got %d", len(ids))
		}
	})

	t.Run("ListMissingBucket", func(t *testing.T) {
		ids, err := s.List(ctx, "empty-bucket")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected no ids, got %d", len(ids))
		}
	})
}
