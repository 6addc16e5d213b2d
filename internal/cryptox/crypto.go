// Package cryptox implements the two cryptographic primitives of the system:
// deriving a per-user master key from a password and sealing/opening byte
// payloads with authenticated encryption.
//
// The sealed payload layout is a storage format and must not change:
//
//	nonce(12 bytes) || auth tag(16 bytes) || ciphertext
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"minventory/internal/common"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the master key length (AES-256).
	KeySize = 32

	// SaltSize is the fixed length of key-derivation salts.
	SaltSize = 16

	NonceSize = 12
	TagSize   = 16

	// Argon2id parameters. The 128 MiB working set is the point of the
	// exercise: brute-forcing password guesses has to hurt.
	argonTime    = 1
	argonMemory  = 128 * 1024 // KiB
	argonThreads = 4
)

// NewSalt returns a fresh random key-derivation salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey derives the 32-byte master key from a password and a per-user
// salt using Argon2id. Deterministic: same inputs always yield the same key.
// This call is intentionally slow and memory-hungry; never run it while
// holding shared locks.
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, common.ErrInvalidSalt
	}
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize), nil
}

// Seal encrypts plaintext with AES-256-GCM under key. A fresh random
// 12-byte nonce is generated per call; nonces are never reused under the
// same key.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	// Seal returns ciphertext||tag; the storage layout wants the tag in
	// front of the ciphertext.
	ct := aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(ct) - TagSize

	sealed := make([]byte, 0, NonceSize+len(ct))
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ct[tagStart:]...)
	sealed = append(sealed, ct[:tagStart]...)
	return sealed, nil
}

// Open decrypts a sealed payload. It fails with common.ErrDecryptionFailed
// on truncated payloads and on tag verification failure (tampering or wrong
// key). Decryption is all-or-nothing: no partial plaintext is ever returned.
func Open(sealed, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < NonceSize+TagSize {
		return nil, common.ErrDecryptionFailed
	}

	nonce := sealed[:NonceSize]
	tag := sealed[NonceSize : NonceSize+TagSize]
	ct := sealed[NonceSize+TagSize:]

	// Rebuild the ciphertext||tag order cipher.AEAD expects.
	buf := make([]byte, 0, len(ct)+TagSize)
	buf = append(buf, ct...)
	buf = append(buf, tag...)

	plaintext, err := aead.Open(nil, nonce, buf, nil)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, common.ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Zero overwrites b in place. Used to drop key material on logout.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
