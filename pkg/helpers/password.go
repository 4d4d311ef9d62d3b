package helpers

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashToken hashes an opaque token (a refresh JWT) for at-rest storage, so a
// database read never leaks a directly replayable credential. bcrypt caps
// input at 72 bytes and a serialized JWT is far longer, so the token is
// pre-digested with SHA-256 before the adaptive hash.
func HashToken(token string) (string, error) {
	d := sha256.Sum256([]byte(token))
	b, err := bcrypt.GenerateFromPassword(d[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndToken verifies a token against its stored HashToken value.
func CompareHashAndToken(hash string, token string) bool {
	d := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(hash), d[:]) == nil
}
