package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerificationCodeLength is the fixed length of a human-readable
// verification code.
const VerificationCodeLength = 8

// codeStride selects every 8th character when deriving a code.
const codeStride = 8

// Sign derives the certificate signature as a keyed hash: the SHA-256
// digest of "contentHash:privateKey:timestamp", hex-encoded. The operand
// order and the ':' separators are load-bearing; certificates already in
// circulation were signed this way and must keep verifying. Because the
// scheme is a keyed hash rather than an asymmetric signature, only a
// holder of the private key can reproduce it. The signer's public key is
// carried on records for display and is not bound to the signature.
func Sign(contentHash, privateKey, timestamp string) string {
	payload := contentHash + ":" + privateKey + ":" + timestamp
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerificationCode derives the short shareable code for a certificate:
// concatenate signature and contentHash, take every 8th character starting
// at index 0, uppercase, and cut to VerificationCodeLength. Both inputs
// are hex digests, so indexing bytes and indexing characters agree.
func VerificationCode(signature, contentHash string) string {
	combined := signature + contentHash
	var b strings.Builder
	for i := 0; i < len(combined) && b.Len() < VerificationCodeLength; i += codeStride {
		b.WriteByte(combined[i])
	}
	return strings.ToUpper(b.String())
}
