package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTOTPSecret(t *testing.T) {
	secret, uri, err := GenerateTOTPSecret("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, Issuer)
	assert.Contains(t, uri, "alice")
}

func TestValidateTOTP(t *testing.T) {
	secret, _, err := GenerateTOTPSecret("bob")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, ValidateTOTP(code, secret))
	assert.False(t, ValidateTOTP("000000", secret))
	assert.False(t, ValidateTOTP(code, ""))
}
