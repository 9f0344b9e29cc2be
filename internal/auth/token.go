package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	tokenLength = 32 // 32 bytes = 256 bits
)

// IssuedToken pairs the plaintext API token handed to the caller with the
// hash that goes into storage. The plaintext is shown exactly once and
// never persisted.
type IssuedToken struct {
	Plain string
	Hash  string
}

// NewAPIToken generates a random bearer token for a signer.
func NewAPIToken() (IssuedToken, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return IssuedToken{}, fmt.Errorf("failed to generate token: %w", err)
	}

	// Encode to base64 for easier transmission
	plain := base64.RawURLEncoding.EncodeToString(bytes)
	return IssuedToken{Plain: plain, Hash: HashToken(plain)}, nil
}

// HashToken hashes a token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.RawStdEncoding.EncodeToString(hash[:])
}

// VerifyToken verifies a token against its hash using constant-time comparison
func VerifyToken(token, storedHash string) bool {
	actualHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(actualHash), []byte(storedHash)) == 1
}
