package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"exgate/storage"
)

const (
	sessionBucket = "sessions"

	// ioTimeout bounds every repository call. The exchange partner enforces
	// its own session-duration timeout independently.
	ioTimeout = 5 * time.Second

	cleanupInterval = 5 * time.Minute
)

// Session is the server-side record proving a prior successful
// authentication, valid until ExpiresAt.
type Session struct {
	ID        string    `json:"session_id"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expiration_timestamp"`
}

// Expired reports whether the session is past expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SessionStore persists sessions in a storage.Repository, one record per
// session id. Expired records are deleted lazily on load and in batch by
// SweepExpired; a background loop additionally sweeps on a fixed interval.
type SessionStore struct {
	repo     storage.Repository
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSessionStore creates a session store backed by the given repository
// and starts its periodic cleanup goroutine.
func NewSessionStore(repo storage.Repository) *SessionStore {
	s := &SessionStore{
		repo:   repo,
		stopCh: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Close stops the background cleanup goroutine.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Load returns the session for the given id. The second return value is
// false when the id is empty, the record does not exist, or the record is
// expired; an expired record is deleted as a side effect. A non-nil error
// indicates a storage fault, not an absent session.
func (s *SessionStore) Load(ctx context.Context, id string) (Session, bool, error) {
	if id == "" {
		return Session{}, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, ioTimeout)
	defer cancel()

	data, err := s.repo.Get(ctx, sessionBucket, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("loading session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupt record — remove it.
		_ = s.repo.Delete(ctx, sessionBucket, id)
		return Session{}, false, nil
	}
	if session.Expired(time.Now()) {
		if err := s.delete(ctx, id); err != nil {
			return Session{}, false, err
		}
		return Session{}, false, nil
	}
	return session, true, nil
}

// Save upserts the session keyed by its id.
func (s *SessionStore) Save(ctx context.Context, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, ioTimeout)
	defer cancel()
	if err := s.repo.Put(ctx, sessionBucket, session.ID, data); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// SweepExpired deletes every session past expiry. Concurrent sweeps are
// safe: a record already deleted by another sweep is skipped.
func (s *SessionStore) SweepExpired(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ioTimeout)
	defer cancel()

	ids, err := s.repo.List(ctx, sessionBucket)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	now := time.Now()
	for _, id := range ids {
		data, err := s.repo.Get(ctx, sessionBucket, id)
		if err != nil {
			continue
		}
		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			// Corrupt record — remove it.
			_ = s.repo.Delete(ctx, sessionBucket, id)
			continue
		}
		if session.Expired(now) {
			if err := s.delete(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// delete removes a session, treating an already-missing record as success.
func (s *SessionStore) delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, sessionBucket, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			_ = s.SweepExpired(context.Background())
		}
	}
}
