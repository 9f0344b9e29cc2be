package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSignerKeyPair creates a fresh Ed25519 key pair for a signer and
// returns both halves hex-encoded. The private half is expected to be
// sealed by a KeyVault before it is stored anywhere.
func GenerateSignerKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key pair: %w", err)
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}
