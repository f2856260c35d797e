package exchange

import "errors"

// Protocol error messages are part of the wire contract and are returned
// verbatim on the failure line.
var (
	// ErrUnauthorized is returned on credential mismatch during checkauth.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrNoActiveSession is returned when a privileged call carries no
	// valid, non-expired session.
	ErrNoActiveSession = errors.New("No active session found. Use 'checkauth' to start a new session.")

	// ErrInvalidCSRFToken is returned when CSRF protection is enabled and
	// the presented token does not match the session's token.
	ErrInvalidCSRFToken = errors.New("Invalid CSRF token.")

	// ErrEmptyFilename is returned when a file or import call names no file.
	ErrEmptyFilename = errors.New("Filename is empty.")

	// ErrNoBody is returned when a file call carries no payload.
	ErrNoBody = errors.New("Request body is undefined")
)

// protocolError reports whether err carries a message meant for the partner
// verbatim. Anything else is an internal fault that must be logged and
// surfaced as a generic failure.
func protocolError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrInvalidCSRFToken) ||
		errors.Is(err, ErrEmptyFilename) ||
		errors.Is(err, ErrNoBody)
}
