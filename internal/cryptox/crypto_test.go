package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"minventory/internal/common"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)

	key1, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)

	key1, _ := DeriveKey(password, salt1)
	key2, _ := DeriveKey(password, salt2)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys for different salts, got same")
	}
}

func TestDeriveKey_InvalidSalt(t *testing.T) {
	for _, salt := range [][]byte{nil, {}, []byte("short"), bytes.Repeat([]byte{1}, SaltSize+1)} {
		if _, err := DeriveKey([]byte("pw"), salt); !errors.Is(err, common.ErrInvalidSalt) {
			t.Errorf("salt len=%d: expected ErrInvalidSalt, got %v", len(salt), err)
		}
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey()

	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xFF}, 4096),
		{0x00},
	}

	for _, p := range payloads {
		sealed, err := Seal(p, key)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		if len(sealed) != NonceSize+TagSize+len(p) {
			t.Fatalf("sealed length = %d, want %d", len(sealed), NonceSize+TagSize+len(p))
		}
		got, err := Open(sealed, key)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(got, p) {
			t.Errorf("round trip mismatch: got %x want %x", got, p)
		}
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key := testKey()
	a, _ := Seal([]byte("payload"), key)
	b, _ := Seal([]byte("payload"), key)
	if bytes.Equal(a[:NonceSize], b[:NonceSize]) {
		t.Errorf("two seals produced the same nonce")
	}
}

func TestOpen_TamperDetection(t *testing.T) {
	key := testKey()
	sealed, err := Seal([]byte("sensitive data"), key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	// Flip one bit in every region: nonce, tag, ciphertext.
	for _, pos := range []int{0, NonceSize, NonceSize + TagSize} {
		tampered := append([]byte(nil), sealed...)
		tampered[pos] ^= 0x01
		if _, err := Open(tampered, key); !errors.Is(err, common.ErrDecryptionFailed) {
			t.Errorf("bit flip at %d: expected ErrDecryptionFailed, got %v", pos, err)
		}
	}
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, _ := Seal([]byte("data"), testKey())
	other := bytes.Repeat([]byte{0x42}, KeySize)
	if _, err := Open(sealed, other); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed with wrong key, got %v", err)
	}
}

func TestOpen_Truncated(t *testing.T) {
	key := testKey()
	for _, n := range []int{0, 1, NonceSize, NonceSize + TagSize - 1} {
		if _, err := Open(make([]byte, n), key); !errors.Is(err, common.ErrDecryptionFailed) {
			t.Errorf("len=%d: expected ErrDecryptionFailed, got %v", n, err)
		}
	}
}

func TestSealOpen_InvalidKeyLength(t *testing.T) {
	for _, key := range [][]byte{nil, make([]byte, 16), make([]byte, 31), make([]byte, 33)} {
		if _, err := Seal([]byte("x"), key); !errors.Is(err, common.ErrInvalidKeyLength) {
			t.Errorf("Seal key len=%d: expected ErrInvalidKeyLength, got %v", len(key), err)
		}
		if _, err := Open(make([]byte, 64), key); !errors.Is(err, common.ErrInvalidKeyLength) {
			t.Errorf("Open key len=%d: expected ErrInvalidKeyLength, got %v", len(key), err)
		}
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("Zero left data behind: %v", b)
	}
}
