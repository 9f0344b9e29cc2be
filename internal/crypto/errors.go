package crypto

import "errors"

var (
	// ErrDecryptFailed is returned when AEAD decryption of private key
	// material fails, either because the ciphertext was tampered with or
	// because the vault was built from the wrong master secret.
	ErrDecryptFailed = errors.New("key decryption failed")

	// ErrMalformedKeyPayload is returned when an encrypted key payload is
	// not valid base64 or is too short to contain a nonce and a tag.
	ErrMalformedKeyPayload = errors.New("malformed encrypted key payload")

	// ErrUnknownKeyMaterial is returned when key material carries a kind
	// the vault does not recognize.
	ErrUnknownKeyMaterial = errors.New("unknown key material kind")
)
