// Package verify answers viewer lookups: given a compact token or a bare
// verification code, it reconstructs what can be asserted about a
// certificate and how strongly.
package verify

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/signetlab/signet/internal/compact"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

// Status classifies a verification outcome.
type Status string

const (
	// StatusVerified means the content hash was recomputed and matches the
	// canonical record.
	StatusVerified Status = "verified"
	// StatusPartial means the canonical content is longer than a compact
	// token carries; the embedded prefix checks out but the full content
	// could not be re-verified from the token alone.
	StatusPartial Status = "partial"
	// StatusMismatch means a canonical record exists but the presented
	// content does not hash to its certified digest.
	StatusMismatch Status = "mismatch"
	// StatusNotFound means no canonical record matched.
	StatusNotFound Status = "not_found"
	// StatusAmbiguous means a verification code matched several records.
	// Codes are lossy 8-char projections; collisions are expected and must
	// never resolve to an arbitrary winner.
	StatusAmbiguous Status = "ambiguous"
	// StatusInvalid means the token could not be decoded at all.
	StatusInvalid Status = "invalid"
)

// Result is the viewer-facing verification outcome.
type Result struct {
	Status      Status                      `json:"status"`
	Message     string                      `json:"message,omitempty"`
	Certificate *models.CertificateRecord   `json:"certificate,omitempty"`
	Matches     []*models.CertificateRecord `json:"matches,omitempty"`
}

// Service resolves verification lookups against canonical storage.
type Service struct {
	certs *repository.CertificateRepository
	log   zerolog.Logger
}

// NewService creates a verification service.
func NewService(certs *repository.CertificateRepository, log zerolog.Logger) *Service {
	return &Service{certs: certs, log: log}
}

// VerifyToken decodes a compact token and checks it against the canonical
// record. Decode failures and missing records are display states carried
// in the Result; only storage faults surface as errors.
func (s *Service) VerifyToken(token string) (*Result, error) {
	decoded, err := compact.Decode(token)
	if err != nil {
		return &Result{
			Status:  StatusInvalid,
			Message: "invalid or corrupted certificate",
		}, nil
	}

	canonical, err := s.certs.GetByID(decoded.ID)
	if errors.Is(err, repository.ErrCertificateNotFound) {
		// Keep the decoded fields so the viewer can still display them
		return &Result{
			Status:      StatusNotFound,
			Message:     "no matching certificate found",
			Certificate: decoded,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s.countVerification(canonical)

	status, message := classifyToken(decoded, canonical)
	return &Result{Status: status, Message: message, Certificate: canonical}, nil
}

// VerifyCode looks up canonical records by verification code. Zero, one,
// and many matches are three distinct outcomes.
func (s *Service) VerifyCode(code string) (*Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	matches, err := s.certs.ListByVerificationCode(code)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return &Result{
			Status:  StatusNotFound,
			Message: "no matching certificate found",
		}, nil
	case 1:
		rec := matches[0]
		s.countVerification(rec)
		if crypto.HashContent(rec.Content) != rec.ContentHash {
			return &Result{
				Status:      StatusMismatch,
				Message:     "content does not match the certified hash",
				Certificate: rec,
			}, nil
		}
		return &Result{Status: StatusVerified, Certificate: rec}, nil
	default:
		// An ambiguous lookup is not a successful canonical lookup, so no
		// counter moves
		return &Result{
			Status:  StatusAmbiguous,
			Message: "verification code matches multiple certificates",
			Matches: matches,
		}, nil
	}
}

// countVerification bumps the canonical view counter. A failed bump is
// logged and never fails the lookup.
func (s *Service) countVerification(rec *models.CertificateRecord) {
	if err := s.certs.IncrementVerificationCount(rec.ID); err != nil {
		s.log.Warn().Err(err).Str("cert_id", rec.ID).Msg("failed to increment verification count")
		return
	}
	rec.VerificationCount++
}

func classifyToken(decoded, canonical *models.CertificateRecord) (Status, string) {
	if crypto.HashContent(decoded.Content) == canonical.ContentHash {
		return StatusVerified, ""
	}

	// Content beyond the compact limit cannot hash-match from the token;
	// report it as partial when the embedded prefixes line up
	runes := []rune(canonical.Content)
	if len(runes) > compact.MaxContentRunes &&
		decoded.Content == string(runes[:compact.MaxContentRunes]) &&
		strings.HasPrefix(canonical.ContentHash, decoded.ContentHash) {
		return StatusPartial, "content is longer than the compact form carries; only the embedded prefix was verified"
	}

	return StatusMismatch, "content does not match the certified hash"
}
