package auth

import "errors"

// Domain failures returned by the Service. The HTTP boundary matches these
// with errors.Is and maps them to status codes; anything unrecognized is an
// internal error. Messages here are user-visible, so code/token failures do
// not reveal whether the secret was wrong or merely expired.
var (
	// ErrMissingFields rejects a signup with any empty required field.
	ErrMissingFields = errors.New("all fields are required")
	// ErrInvalidEmail rejects a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrDuplicateEmail rejects a signup for an already-registered email.
	ErrDuplicateEmail = errors.New("user already exists")
	// ErrAccountNotFound is returned by login and forgot-password for an
	// unknown email.
	ErrAccountNotFound = errors.New("user not found")
	// ErrWrongPassword is returned by login for a bad password.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrInvalidOrExpiredCode covers unknown, consumed, and expired
	// verification codes alike.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	// ErrInvalidOrExpiredToken covers unknown, consumed, and expired reset
	// tokens alike.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrUnauthenticated covers every session-token failure. Callers must
	// not distinguish tampered from expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotify wraps a failed notification send. The state transition it
	// followed has already been persisted.
	ErrNotify = errors.New("notification send failed")
)
