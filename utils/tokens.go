package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

const (
	ActivationCodeLength = 6
	ActivationCodeExpiry = 15 * time.Minute
	ResetTokenExpiry     = 24 * time.Hour
)

// GenerateActivationCode returns a numeric code for account activation emails.
func GenerateActivationCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, ActivationCodeLength)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}

// GenerateSecureToken returns an opaque token for password-reset links.
func GenerateSecureToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}
