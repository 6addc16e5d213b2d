// Package models holds the persistent entity types shared by repositories
// and services. Fields holding sealed ciphertext are []byte; their plaintext
// never appears in these structs.
package models

import "time"

// User is an account record. PasswordHash is a bcrypt verifier; KeySalt is
// the per-user key-derivation salt. TwoFactorSecret may be provisioned
// before TwoFactorEnabled flips true (it is enabled permanently by the
// first successful code verification).
type User struct {
	ID               string
	UserName         string
	PasswordHash     []byte
	TwoFactorSecret  string
	TwoFactorEnabled bool
	KeySalt          []byte
	CreatedAt        time.Time
}
