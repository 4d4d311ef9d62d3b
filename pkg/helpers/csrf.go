package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// NewCSRFToken returns a fresh random value for the double-submit cookie.
func NewCSRFToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
