// Package common defines shared constants and sentinel errors used across
// the tasklist server and its tools. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Input-shape errors, raised before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// Store-level errors.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrStoreUnavailable  = errors.New("store unavailable")

	// Credential errors surfaced by the service layer.
	ErrRegistrationConflict = errors.New("identity exists")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	// Session token errors.
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrorInternal = errors.New("internal error")
)

// IsRetryable reports whether err is a transient failure the caller may retry.
// Only store unavailability qualifies; every other kind is terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
