package crypto

// KeyMaterialKind discriminates the stored representation of a private key.
type KeyMaterialKind int

const (
	// KeyMaterialEncrypted marks a vault-sealed payload that must be
	// decrypted before use.
	KeyMaterialEncrypted KeyMaterialKind = iota + 1

	// KeyMaterialLegacyPlaintext marks a key stored in the clear by
	// installations that predate the vault. It is used as-is.
	KeyMaterialLegacyPlaintext
)

// KeyMaterial is a private key in whichever form it was persisted.
// The zero value is invalid; use EncryptedKeyMaterial or LegacyKeyMaterial.
type KeyMaterial struct {
	Kind  KeyMaterialKind
	Value string
}

// EncryptedKeyMaterial wraps a vault-sealed, base64-encoded payload.
func EncryptedKeyMaterial(encoded string) KeyMaterial {
	return KeyMaterial{Kind: KeyMaterialEncrypted, Value: encoded}
}

// LegacyKeyMaterial wraps a plaintext private key from a pre-vault row.
func LegacyKeyMaterial(plaintext string) KeyMaterial {
	return KeyMaterial{Kind: KeyMaterialLegacyPlaintext, Value: plaintext}
}
