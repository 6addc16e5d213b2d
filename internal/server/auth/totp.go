package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Issuer is the label shown by authenticator apps.
const Issuer = "Minventory"

// GenerateTOTPSecret provisions a new two-factor secret for the account and
// returns the secret together with its otpauth:// enrollment URI.
func GenerateTOTPSecret(accountName string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: accountName,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP checks a six-digit code against the account's secret. The
// result is the only thing the core ever learns about the second factor.
func ValidateTOTP(code, secret string) bool {
	if secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}
