package utils

import (
	"crypto/rand"
	"encoding/hex"
)

const intentionTokenBytes = 32

// GenerateIntentionToken returns a 64 character hex one-time token.
func GenerateIntentionToken() (string, error) {
	b := make([]byte, intentionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
