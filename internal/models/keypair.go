package models

import (
	"errors"
	"time"

	"github.com/signetlab/signet/internal/crypto"
)

// ErrNoKeyMaterial is returned when a stored key pair carries neither an
// encrypted private key nor a legacy plaintext one.
var ErrNoKeyMaterial = errors.New("key pair has no private key material")

// SignerKeyPair holds a signer's declared public key and their private key
// material at rest. Exactly one pair is expected per signer; when several
// exist the most recently created one is used. There is no rotation or
// revocation model.
type SignerKeyPair struct {
	ID                  int64     `json:"id"`
	UserID              string    `json:"user_id"`
	PublicKey           string    `json:"public_key"`
	EncryptedPrivateKey string    `json:"-"` // base64(nonce || ciphertext || tag)
	LegacyPrivateKey    string    `json:"-"` // plaintext migration artifact
	CreatedAt           time.Time `json:"created_at"`
}

// Material returns the private key material as a tagged variant so callers
// handle the legacy plaintext migration path explicitly.
func (kp *SignerKeyPair) Material() (crypto.KeyMaterial, error) {
	switch {
	case kp.EncryptedPrivateKey != "":
		return crypto.EncryptedKeyMaterial(kp.EncryptedPrivateKey), nil
	case kp.LegacyPrivateKey != "":
		return crypto.LegacyKeyMaterial(kp.LegacyPrivateKey), nil
	default:
		return crypto.KeyMaterial{}, ErrNoKeyMaterial
	}
}
