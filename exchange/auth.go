package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"exgate/config"
)

// Credentials carry the partner's login for a single checkauth call. They
// are never persisted.
type Credentials struct {
	Username string
	Password string
}

// Gate verifies exchange credentials and mints sessions.
type Gate struct {
	settings *config.Settings
	sessions *SessionStore
	audit    *auditLogger
}

// newGate creates an authentication gate over the given session store.
func newGate(settings *config.Settings, sessions *SessionStore, audit *auditLogger) *Gate {
	return &Gate{settings: settings, sessions: sessions, audit: audit}
}

// CheckAuth compares the presented credentials against the configured ones.
// The comparison is plain string equality; the partner protocol does not
// call for a constant-time check here. On match a fresh session is minted:
// the expired-session sweep and the new-session save run concurrently and
// are both awaited before the result is returned. A non-nil error reports a
// storage fault.
func (g *Gate) CheckAuth(ctx context.Context, creds Credentials) (Result, error) {
	if creds.Username == "" || creds.Password == "" ||
		creds.Username != g.settings.Username || creds.Password != g.settings.Password {
		g.audit.event(EventAuthFailure, slog.String("username", creds.Username))
		return Failure(ErrUnauthorized.Error()), nil
	}

	now := time.Now()
	session := Session{
		ID:        uuid.NewString(),
		CSRFToken: uuid.NewString(),
		ExpiresAt: now.Add(time.Duration(g.settings.SessionDurationSeconds) * time.Second),
	}

	var sweepErr, saveErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweepErr = g.sessions.SweepExpired(ctx)
	}()
	saveErr = g.sessions.Save(ctx, session)
	<-done
	if err := errors.Join(sweepErr, saveErr); err != nil {
		return Result{}, fmt.Errorf("issuing session: %w", err)
	}

	g.audit.event(EventAuthSuccess, slog.String("session_id", session.ID))
	return Success(
		g.settings.SessionCookieName,
		session.ID,
		g.settings.CSRFParamName+"="+session.CSRFToken,
		"timestamp="+strconv.FormatInt(now.Unix(), 10),
	), nil
}
