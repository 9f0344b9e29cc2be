// Package compact implements the lossy certificate token carried in QR
// codes and share URLs. A token is URL-safe base64 over a minimal JSON
// projection of a certificate; it exists only in transit and is never
// persisted.
package compact

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/signetlab/signet/internal/models"
)

// ErrInvalidToken is returned for tokens that are not valid base64, not
// valid JSON, or missing required fields. Callers present it as "no
// certificate found" rather than a server fault.
var ErrInvalidToken = errors.New("invalid certificate token")

// MaxContentRunes is the content prefix length carried in a token.
// Content longer than this cannot be fully re-verified from the token
// alone; verification of such records degrades to a partial result.
const MaxContentRunes = 200

// prefixRunes caps the hash, signature, and public key fields. The
// prefixes are for display only and are useless for integrity checks.
const prefixRunes = 32

// payload is the wire projection. Field order is fixed; existing QR codes
// were minted with exactly this layout.
type payload struct {
	ID          string   `json:"i"`
	Content     string   `json:"c"`
	ContentHash string   `json:"h"`
	Signature   string   `json:"s"`
	PublicKey   string   `json:"p"`
	CreatedAt   string   `json:"t"`
	CreatorName string   `json:"n"`
	Code        string   `json:"v"`
	Platforms   []string `json:"pl"`
}

// Encode projects a certificate into a URL-safe compact token. The owner
// id, thumbnail, and verification count are deliberately dropped; content
// is cut to MaxContentRunes and the digests to their display prefixes.
func Encode(rec *models.CertificateRecord) (string, error) {
	platforms := rec.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	data, err := json.Marshal(payload{
		ID:          rec.ID,
		Content:     truncateRunes(rec.Content, MaxContentRunes),
		ContentHash: truncateRunes(rec.ContentHash, prefixRunes),
		Signature:   truncateRunes(rec.Signature, prefixRunes),
		PublicKey:   truncateRunes(rec.PublicKey, prefixRunes),
		CreatedAt:   rec.CreatedAt,
		CreatorName: rec.CreatorName,
		Code:        rec.VerificationCode,
		Platforms:   platforms,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode certificate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode into a record-shaped value. Fields the token
// does not carry come back as explicit defaults: empty owner id, no
// thumbnail, zero verification count. Tokens minted by older clients may
// arrive padded or in the standard alphabet; all four base64 variants are
// accepted.
func Decode(token string) (*models.CertificateRecord, error) {
	raw, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	platforms := p.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	return &models.CertificateRecord{
		ID:                p.ID,
		UserID:            "",
		Content:           p.Content,
		ContentHash:       p.ContentHash,
		Signature:         p.Signature,
		PublicKey:         p.PublicKey,
		CreatedAt:         p.CreatedAt,
		CreatorName:       p.CreatorName,
		VerificationCode:  p.Code,
		Platforms:         platforms,
		Thumbnail:         "",
		VerificationCount: 0,
	}, nil
}

func (p *payload) validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"i", p.ID},
		{"c", p.Content},
		{"h", p.ContentHash},
		{"s", p.Signature},
		{"p", p.PublicKey},
		{"t", p.CreatedAt},
		{"n", p.CreatorName},
		{"v", p.Code},
	} {
		if f.value == "" {
			return fmt.Errorf("missing field %q", f.name)
		}
	}
	return nil
}

// decodeBase64 tries the unpadded URL-safe alphabet first, then falls
// back through the padded and standard variants.
func decodeBase64(s string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	data, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}

	return base64.StdEncoding.DecodeString(s)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
