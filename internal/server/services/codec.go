// Package services contains the server-side business logic: the auth/session
// lifecycle and the read/write paths that seal and open entity fields around
// the privacy gate.
package services

import (
	"encoding/base64"
	"errors"

	"minventory/internal/common"
	"minventory/internal/cryptox"
)

// DecryptionFailedSentinel replaces a field that cannot be opened during a
// batch read, so one corrupted record does not hide a whole listing.
const DecryptionFailedSentinel = "[decryption failed]"

// openField opens a sealed field with the session key. Rows migrated from a
// text column may hold the sealed payload base64-encoded; on a failed open
// the raw bytes are decoded and retried exactly once before giving up.
func openField(sealed, key []byte) ([]byte, error) {
	plaintext, err := cryptox.Open(sealed, key)
	if err == nil {
		return plaintext, nil
	}
	if !errors.Is(err, common.ErrDecryptionFailed) {
		return nil, err
	}

	decoded, decErr := base64.StdEncoding.DecodeString(string(sealed))
	if decErr != nil {
		return nil, err
	}
	plaintext, retryErr := cryptox.Open(decoded, key)
	if retryErr != nil {
		return nil, err
	}
	return plaintext, nil
}

// openString opens a sealed text field.
func openString(sealed, key []byte) (string, error) {
	plaintext, err := openField(sealed, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// openStringOrSentinel is the batch-read variant: failures degrade to the
// sentinel instead of failing the listing.
func openStringOrSentinel(sealed, key []byte) string {
	s, err := openString(sealed, key)
	if err != nil {
		return DecryptionFailedSentinel
	}
	return s
}

// sealString seals a text field for storage.
func sealString(s string, key []byte) ([]byte, error) {
	return cryptox.Seal([]byte(s), key)
}
