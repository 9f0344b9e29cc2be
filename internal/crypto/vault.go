// Package crypto implements the signing core: content hashing, the keyed
// signature scheme, verification code derivation, and the KeyVault that
// seals signer private keys at rest with AES-256-GCM under a key derived
// from the deployment's master secret.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// AESKeySize is the AES-256 key length in bytes.
	AESKeySize = 32
	// AESNonceSize is the GCM nonce length in bytes.
	AESNonceSize = 12
	// AESTagSize is the GCM authentication tag length in bytes.
	AESTagSize = 16

	pbkdf2Iterations = 100000

	// keyDerivationSalt is fixed application-wide so that every process
	// sharing a master secret derives the same vault key. A per-key salt
	// would be stronger, but changing this constant orphans every
	// encrypted key already stored.
	keyDerivationSalt = "signet:keyvault:v1"
)

// DeriveKey stretches the master secret into an AES-256 key with
// PBKDF2-SHA256. The same secret always yields the same key.
func DeriveKey(masterSecret string) []byte {
	return pbkdf2.Key([]byte(masterSecret), []byte(keyDerivationSalt), pbkdf2Iterations, AESKeySize, sha256.New)
}

// KeyVault seals and opens signer private keys. A vault derives its AES
// key once at construction and is safe for concurrent use.
type KeyVault struct {
	aead cipher.AEAD
}

// NewKeyVault builds a vault from the deployment master secret.
func NewKeyVault(masterSecret string) (*KeyVault, error) {
	if masterSecret == "" {
		return nil, errors.New("master secret is required")
	}

	block, err := aes.NewCipher(DeriveKey(masterSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &KeyVault{aead: aead}, nil
}

// EncryptKey seals a plaintext private key. The output is
// base64(nonce || ciphertext || tag) with a fresh random nonce per call,
// so encrypting the same key twice yields different payloads.
func (v *KeyVault) EncryptKey(plaintext string) (string, error) {
	nonce := make([]byte, AESNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptKey opens a payload produced by EncryptKey. Tampered ciphertext
// and a vault built from the wrong master secret are indistinguishable;
// both return ErrDecryptFailed.
func (v *KeyVault) DecryptKey(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedKeyPayload, err)
	}
	if len(raw) < AESNonceSize+AESTagSize {
		return "", fmt.Errorf("%w: payload too short", ErrMalformedKeyPayload)
	}

	nonce, ciphertext := raw[:AESNonceSize], raw[AESNonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// OpenPrivateKey resolves key material to a usable plaintext private key,
// decrypting vault-sealed payloads and passing legacy plaintext through.
func (v *KeyVault) OpenPrivateKey(m KeyMaterial) (string, error) {
	switch m.Kind {
	case KeyMaterialEncrypted:
		return v.DecryptKey(m.Value)
	case KeyMaterialLegacyPlaintext:
		return m.Value, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownKeyMaterial, m.Kind)
	}
}
