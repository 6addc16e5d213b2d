// Package auth provides the two external verification primitives the core
// consumes: session bearer tokens (JWT) and TOTP two-factor codes.
package auth

import (
	"time"

	"minventory/internal/common"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the server-side session ID. The token itself holds no user
// data and no key material; everything lives in the in-memory session.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

// GenerateToken mints a signed HS256 token referencing a session.
func GenerateToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSessionIDFromToken validates a bearer token and extracts the session ID.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.SessionID, nil
}
