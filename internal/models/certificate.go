package models

import "time"

// ISOTimestampLayout renders timestamps the way certificates store them:
// UTC, millisecond precision, trailing Z. The exact string participates in
// signature computation, so it must never be reformatted after signing.
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ISOTimestamp formats t as a certificate timestamp.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOTimestampLayout)
}

// CertificateRecord is the canonical, persisted result of signing a piece
// of content. Append-only after creation; only VerificationCount changes.
type CertificateRecord struct {
	ID                string   `json:"id"`
	UserID            string   `json:"userId"`
	Content           string   `json:"content"`
	ContentHash       string   `json:"contentHash"`
	Signature         string   `json:"signature"`
	PublicKey         string   `json:"publicKey"`
	CreatedAt         string   `json:"createdAt"`
	CreatorName       string   `json:"creatorName"`
	VerificationCode  string   `json:"verificationCode"`
	Platforms         []string `json:"platforms"`
	Thumbnail         string   `json:"thumbnail,omitempty"`
	VerificationCount int64    `json:"verificationCount"`
}
