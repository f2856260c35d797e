package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"exgate/storage"
)

func TestMemoryRepository(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		if err := r.Put(ctx, "sessions", "s1", []byte("data")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := r.Get(ctx, "sessions", "s1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "data" {
			t.Errorf("expected %q, got %q", "data", got)
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		if err := r.Put(ctx, "sessions", "s2", []byte("abc")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := r.Get(ctx, "sessions", "s2")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		got[0] = 'x'
		again, err := r.Get(ctx, "sessions", "s2")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(again) != "abc" {
			t.Errorf("stored record mutated through returned slice: %q", again)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := r.Delete(ctx, "sessions", "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Put(ctx, "concurrent", "k", []byte("v"))
				_, _ = r.Get(ctx, "concurrent", "k")
				_, _ = r.List(ctx, "concurrent")
				_ = r.Delete(ctx, "concurrent", "k")
			}()
		}
		wg.Wait()
	})
}
