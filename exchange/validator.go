package exchange

import (
	"context"
	"crypto/subtle"

	"exgate/config"
)

// Validator confirms that an active session backs a privileged exchange
// call. Every validation re-reads the store so that concurrent expiry and
// sweeps are always observed.
type Validator struct {
	settings *config.Settings
	sessions *SessionStore
}

// newValidator creates a session validator.
func newValidator(settings *config.Settings, sessions *SessionStore) *Validator {
	return &Validator{settings: settings, sessions: sessions}
}

// Validate returns nil when sessionID names an active session and, if CSRF
// protection is enabled, csrfToken matches the session's token. Protocol
// errors carry the exact failure message; other errors are storage faults.
func (v *Validator) Validate(ctx context.Context, sessionID, csrfToken string) error {
	session, ok, err := v.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoActiveSession
	}
	if v.settings.CSRFProtection &&
		subtle.ConstantTimeCompare([]byte(csrfToken), []byte(session.CSRFToken)) != 1 {
		return ErrInvalidCSRFToken
	}
	return nil
}
