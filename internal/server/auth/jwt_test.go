package auth

import (
	"errors"
	"testing"
	"time"

	"minventory/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	sessionID := "session-123"

	tok, err := GenerateToken(sessionID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	got, err := GetSessionIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetSessionIDFromToken error: %v", err)
	}
	if got != sessionID {
		t.Fatalf("sessionID mismatch: got %q want %q", got, sessionID)
	}
}

func TestGetSessionIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("s1", []byte("secret"), -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetSessionIDFromToken(tok, []byte("secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetSessionIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("s2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetSessionIDFromToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetSessionIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetSessionIDFromToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
