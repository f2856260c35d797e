package exchange

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exgate/storage"
	"exgate/storage/memory"
)

func newTestSessionStore(t *testing.T) (*SessionStore, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	s := NewSessionStore(repo)
	t.Cleanup(s.Close)
	return s, repo
}

func TestSessionStoreLoad(t *testing.T) {
	s, repo := newTestSessionStore(t)
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		session := Session{
			ID:        "sess-1",
			CSRFToken: "tok-1",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, s.Save(ctx, session))

		got, ok, err := s.Load(ctx, "sess-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "sess-1", got.ID)
		assert.Equal(t, "tok-1", got.CSRFToken)
	})

	t.Run("EmptyID", func(t *testing.T) {
		_, ok, err := s.Load(ctx, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := s.Load(ctx, "no-such-session")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ExpiredDeletedOnLoad", func(t *testing.T) {
		session := Session{
			ID:        "sess-exp",
			CSRFToken: "tok",
			ExpiresAt: time.Now().Add(-time.Second),
		}
		require.NoError(t, s.Save(ctx, session))

		_, ok, err := s.Load(ctx, "sess-exp")
		require.NoError(t, err)
		assert.False(t, ok)

		// The expired record is gone from the underlying repository.
		_, err = repo.Get(ctx, "sessions", "sess-exp")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ExpiryBoundaryIsExpired", func(t *testing.T) {
		now := time.Now()
		assert.True(t, Session{ExpiresAt: now}.Expired(now))
		assert.False(t, Session{ExpiresAt: now.Add(time.Millisecond)}.Expired(now))
	})

	t.Run("CorruptRecordRemoved", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "sessions", "sess-bad", []byte("not json")))

		_, ok, err := s.Load(ctx, "sess-bad")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.Get(ctx, "sessions", "sess-bad")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSweepExpired(t *testing.T) {
	s, repo := newTestSessionStore(t)
	ctx := context.Background()

	active := Session{ID: "active", CSRFToken: "a", ExpiresAt: time.Now().Add(time.Hour)}
	expired1 := Session{ID: "expired-1", CSRFToken: "b", ExpiresAt: time.Now().Add(-time.Minute)}
	expired2 := Session{ID: "expired-2", CSRFToken: "c", ExpiresAt: time.Now().Add(-time.Hour)}
	for _, sess := range []Session{active, expired1, expired2} {
		require.NoError(t, s.Save(ctx, sess))
	}

	require.NoError(t, s.SweepExpired(ctx))

	ids, err := repo.List(ctx, "sessions")
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, ids)

	t.Run("NoopWhenNothingExpired", func(t *testing.T) {
		require.NoError(t, s.SweepExpired(ctx))
		got, ok, err := s.Load(ctx, "active")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "active", got.ID)
	})

	t.Run("ConcurrentSweeps", func(t *testing.T) {
		for i := 0; i < 8; i++ {
			require.NoError(t, s.Save(ctx, Session{
				ID:        "gone-" + string(rune('a'+i)),
				ExpiresAt: time.Now().Add(-time.Second),
			}))
		}
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.SweepExpired(ctx))
			}()
		}
		wg.Wait()

		ids, err := repo.List(ctx, "sessions")
		require.NoError(t, err)
		assert.Equal(t, []string{"active"}, ids)
	})
}
