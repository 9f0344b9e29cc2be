package compact

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/signetlab/signet/internal/models"
)

func sampleRecord() *models.CertificateRecord {
	return &models.CertificateRecord{
		ID:                "cert_9f2c1a",
		UserID:            "user_42",
		Content:           "This statement was published by its author.",
		ContentHash:       "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		Signature:         "6d78f1c2a3b4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e",
		PublicKey:         "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		CreatedAt:         "2026-08-25T10:30:00.000Z",
		CreatorName:       "Ada Lovelace",
		VerificationCode:  "6B9DAFC4",
		Platforms:         []string{"Instagram", "YouTube"},
		Thumbnail:         "https://cdn.example.com/t/abc.jpg",
		VerificationCount: 17,
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	rec := sampleRecord()

	token, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// Carried fields survive byte-for-byte
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
	if got.Content != rec.Content {
		t.Errorf("Content = %q, want %q", got.Content, rec.Content)
	}
	if got.ContentHash != rec.ContentHash[:32] {
		t.Errorf("ContentHash = %q, want 32-char prefix", got.ContentHash)
	}
	if got.Signature != rec.Signature[:32] {
		t.Errorf("Signature = %q, want 32-char prefix", got.Signature)
	}
	if got.PublicKey != rec.PublicKey[:32] {
		t.Errorf("PublicKey = %q, want 32-char prefix", got.PublicKey)
	}
	if got.CreatedAt != rec.CreatedAt {
		t.Errorf("CreatedAt = %q, want %q", got.CreatedAt, rec.CreatedAt)
	}
	if got.CreatorName != rec.CreatorName {
		t.Errorf("CreatorName = %q, want %q", got.CreatorName, rec.CreatorName)
	}
	if got.VerificationCode != rec.VerificationCode {
		t.Errorf("VerificationCode = %q, want %q", got.VerificationCode, rec.VerificationCode)
	}
	if len(got.Platforms) != 2 || got.Platforms[0] != "Instagram" || got.Platforms[1] != "YouTube" {
		t.Errorf("Platforms = %v, want %v", got.Platforms, rec.Platforms)
	}

	// Elided fields come back as defined defaults
	if got.UserID != "" {
		t.Errorf("UserID = %q, want empty", got.UserID)
	}
	if got.Thumbnail != "" {
		t.Errorf("Thumbnail = %q, want empty", got.Thumbnail)
	}
	if got.VerificationCount != 0 {
		t.Errorf("VerificationCount = %d, want 0", got.VerificationCount)
	}
}

func TestEncode_URLSafe(t *testing.T) {
	rec := sampleRecord()
	// Byte-diverse content so a regression to the standard alphabet would
	// show up as '+' or '/' in the token
	rec.Content = strings.Repeat("🔏✓?~>", 30)

	token, err := Encode(rec)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token contains non-URL-safe characters: %q", token)
	}
}

func TestEncode_FieldOrder(t *testing.T) {
	token, err := Encode(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatal(err)
	}

	// Existing QR codes carry keys in exactly this sequence
	order := []string{`"i":`, `"c":`, `"h":`, `"s":`, `"p":`, `"t":`, `"n":`, `"v":`, `"pl":`}
	last := -1
	for _, key := range order {
		idx := strings.Index(string(raw), key)
		if idx < 0 {
			t.Fatalf("key %s missing from payload %s", key, raw)
		}
		if idx < last {
			t.Errorf("key %s out of order in payload %s", key, raw)
		}
		last = idx
	}
}

func TestEncode_TruncatesContent(t *testing.T) {
	rec := sampleRecord()
	rec.Content = strings.Repeat("é", 250)

	token, err := Encode(rec)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(token)
	if err != nil {
		t.Fatal(err)
	}

	if n := utf8.RuneCountInString(got.Content); n != MaxContentRunes {
		t.Errorf("decoded content runes = %d, want %d", n, MaxContentRunes)
	}
	if !utf8.ValidString(got.Content) {
		t.Error("truncation split a multi-byte rune")
	}
	if got.Content != strings.Repeat("é", MaxContentRunes) {
		t.Error("decoded content is not the expected prefix")
	}
}

func TestDecode_AcceptsLegacyAlphabets(t *testing.T) {
	token, err := Encode(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatal(err)
	}

	variants := map[string]string{
		"padded url":      base64.URLEncoding.EncodeToString(raw),
		"raw standard":    base64.RawStdEncoding.EncodeToString(raw),
		"padded standard": base64.StdEncoding.EncodeToString(raw),
	}

	for name, variant := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(variant)
			if err != nil {
				t.Fatalf("Decode(%s) error = %v", name, err)
			}
			if got.ID != "cert_9f2c1a" {
				t.Errorf("ID = %q, want cert_9f2c1a", got.ID)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not-a-token!!!"},
		{"base64 of non-json", base64.RawURLEncoding.EncodeToString([]byte("plain text"))},
		{"json but wrong shape", base64.RawURLEncoding.EncodeToString([]byte(`[1,2,3]`))},
		{"missing code field", base64.RawURLEncoding.EncodeToString([]byte(
			`{"i":"x","c":"y","h":"z","s":"w","p":"q","t":"2026-01-01T00:00:00.000Z","n":"a"}`))},
		{"empty required field", base64.RawURLEncoding.EncodeToString([]byte(
			`{"i":"","c":"y","h":"z","s":"w","p":"q","t":"2026-01-01T00:00:00.000Z","n":"a","v":"CODE1234"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestDecode_MissingPlatforms(t *testing.T) {
	// Tokens from clients that never set platforms omit the field entirely
	payload := `{"i":"cert_1","c":"text","h":"hh","s":"ss","p":"pp",` +
		`"t":"2026-01-01T00:00:00.000Z","n":"Ada","v":"ABCD1234"}`
	got, err := Decode(base64.RawURLEncoding.EncodeToString([]byte(payload)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Platforms == nil {
		t.Fatal("Platforms is nil, want empty slice")
	}
	if len(got.Platforms) != 0 {
		t.Errorf("Platforms = %v, want empty", got.Platforms)
	}
}

func TestEncode_NilPlatforms(t *testing.T) {
	rec := sampleRecord()
	rec.Platforms = nil

	token, err := Encode(rec)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"pl":[]`) {
		t.Errorf("payload %s does not carry an empty platform list", raw)
	}
}
