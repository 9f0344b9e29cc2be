package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the lowercase hex SHA-256 digest of content.
// The digest is computed over the exact bytes submitted; callers must not
// trim or normalize whitespace, or re-verification of stored certificates
// would break.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
