package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns n random bytes hex-encoded, used for invite
// and account-recovery tokens.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
