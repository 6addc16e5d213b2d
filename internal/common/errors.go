// Package common defines shared constants and sentinel errors used across
// minventory components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Auth errors. ErrAuthenticationFailed is deliberately generic: it is
	// returned both for unknown users and for wrong passwords.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTwoFactorRequired    = errors.New("two-factor verification required")
	ErrInvalidCode          = errors.New("invalid two-factor code")
	ErrInvalidToken         = errors.New("invalid token")
	ErrSessionExpired       = errors.New("session expired")

	// Privacy gate.
	ErrAccessDenied = errors.New("access denied")

	// Crypto errors. ErrInvalidSalt and ErrInvalidKeyLength indicate
	// malformed inputs and are fatal to the calling request.
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidSalt      = errors.New("invalid salt")
	ErrInvalidKeyLength = errors.New("invalid key length: must be 32 bytes")
)
