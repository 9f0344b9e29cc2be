package models

import "time"

// APIToken is a bearer credential bound to a signer identity. Only the
// SHA-256 hash of the token is stored; the plaintext is returned once at
// issuance and never again.
type APIToken struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	TokenHash  string     `json:"-"` // Never expose token hash
	Label      string     `json:"label,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"` // nil = non-expiring
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
