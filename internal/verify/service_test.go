package verify

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/signetlab/signet/internal/compact"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

func newTestService(t *testing.T) (*Service, *repository.CertificateRepository, *db.DB) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database))

	certs := repository.NewCertificateRepository(database.DB)
	return NewService(certs, zerolog.Nop()), certs, database
}

// issueCertificate builds an internally consistent record the way the
// signing endpoint would: hash, keyed signature, derived code.
func issueCertificate(t *testing.T, certs *repository.CertificateRepository, id, content string) *models.CertificateRecord {
	t.Helper()

	const privateKey = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	createdAt := "2026-08-25T10:30:00.000Z"

	hash := crypto.HashContent(content)
	sig := crypto.Sign(hash, privateKey, createdAt)

	rec := &models.CertificateRecord{
		ID:               id,
		UserID:           "user_1",
		Content:          content,
		ContentHash:      hash,
		Signature:        sig,
		PublicKey:        "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		CreatedAt:        createdAt,
		CreatorName:      "Ada Lovelace",
		VerificationCode: crypto.VerificationCode(sig, hash),
		Platforms:        []string{"Instagram"},
	}
	require.NoError(t, certs.Create(rec))
	return rec
}

func TestVerifyToken_Verified(t *testing.T) {
	svc, certs, _ := newTestService(t)
	rec := issueCertificate(t, certs, "cert_1", "Short, fully embeddable content.")

	token, err := compact.Encode(rec)
	require.NoError(t, err)

	result, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, result.Status)
	require.NotNil(t, result.Certificate)
	require.Equal(t, "cert_1", result.Certificate.ID)
	require.Equal(t, int64(1), result.Certificate.VerificationCount)

	// The canonical counter moved
	stored, err := certs.GetByID("cert_1")
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.VerificationCount)
}

func TestVerifyToken_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, token := range []string{"", "!!!", "bm90LWpzb24"} {
		result, err := svc.VerifyToken(token)
		require.NoError(t, err)
		require.Equal(t, StatusInvalid, result.Status)
		require.Equal(t, "invalid or corrupted certificate", result.Message)
		require.Nil(t, result.Certificate)
	}
}

func TestVerifyToken_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Well-formed token whose id has no canonical record
	orphan := &models.CertificateRecord{
		ID:               "cert_gone",
		Content:          "content",
		ContentHash:      crypto.HashContent("content"),
		Signature:        strings.Repeat("ab", 32),
		PublicKey:        strings.Repeat("cd", 32),
		CreatedAt:        "2026-08-25T10:30:00.000Z",
		CreatorName:      "Ada",
		VerificationCode: "ABCD1234",
	}
	token, err := compact.Encode(orphan)
	require.NoError(t, err)

	result, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, result.Status)
	// Decoded fields stay displayable
	require.NotNil(t, result.Certificate)
	require.Equal(t, "cert_gone", result.Certificate.ID)
	require.Equal(t, "Ada", result.Certificate.CreatorName)
}

func TestVerifyToken_PartialForLongContent(t *testing.T) {
	svc, certs, _ := newTestService(t)

	long := strings.Repeat("é", 350)
	rec := issueCertificate(t, certs, "cert_long", long)

	token, err := compact.Encode(rec)
	require.NoError(t, err)

	result, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, StatusPartial, result.Status)
	require.NotEmpty(t, result.Message)
	require.Equal(t, "cert_long", result.Certificate.ID)

	// A partial result still counts as a canonical lookup
	require.Equal(t, int64(1), result.Certificate.VerificationCount)
}

func TestVerifyToken_Mismatch(t *testing.T) {
	svc, certs, _ := newTestService(t)
	rec := issueCertificate(t, certs, "cert_t", "authentic content")

	// Token carrying altered content under the same certificate id
	forged := *rec
	forged.Content = "tampered content"
	token, err := compact.Encode(&forged)
	require.NoError(t, err)

	result, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, StatusMismatch, result.Status)
	require.Equal(t, "content does not match the certified hash", result.Message)
}

func TestVerifyToken_StorageFailure(t *testing.T) {
	svc, certs, database := newTestService(t)
	rec := issueCertificate(t, certs, "cert_1", "content")

	token, err := compact.Encode(rec)
	require.NoError(t, err)

	// Drop the table out from under the service
	_, err = database.Exec(`DROP TABLE certificates`)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyCode_Verified(t *testing.T) {
	svc, certs, _ := newTestService(t)
	rec := issueCertificate(t, certs, "cert_1", "code lookup content")

	result, err := svc.VerifyCode(rec.VerificationCode)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, result.Status)
	require.Equal(t, "cert_1", result.Certificate.ID)
	require.Equal(t, int64(1), result.Certificate.VerificationCount)
}

func TestVerifyCode_NormalizesInput(t *testing.T) {
	svc, certs, _ := newTestService(t)
	rec := issueCertificate(t, certs, "cert_1", "code lookup content")

	result, err := svc.VerifyCode("  " + strings.ToLower(rec.VerificationCode) + " ")
	require.NoError(t, err)
	require.Equal(t, StatusVerified, result.Status)
}

func TestVerifyCode_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.VerifyCode("ZZZZ9999")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, result.Status)
	require.Nil(t, result.Certificate)
}

func TestVerifyCode_Ambiguous(t *testing.T) {
	svc, certs, _ := newTestService(t)

	// Two records sharing one code; codes are lossy 8-char projections so
	// collisions are a legitimate production state
	for _, id := range []string{"cert_a", "cert_b"} {
		rec := &models.CertificateRecord{
			ID:               id,
			UserID:           "user_1",
			Content:          "content for " + id,
			ContentHash:      crypto.HashContent("content for " + id),
			Signature:        strings.Repeat("ab", 32),
			PublicKey:        strings.Repeat("cd", 32),
			CreatedAt:        "2026-08-25T10:30:00.000Z",
			CreatorName:      "Ada",
			VerificationCode: "SAMECODE",
		}
		require.NoError(t, certs.Create(rec))
	}

	result, err := svc.VerifyCode("SAMECODE")
	require.NoError(t, err)
	require.Equal(t, StatusAmbiguous, result.Status)
	require.Len(t, result.Matches, 2)
	require.Nil(t, result.Certificate)

	// No counter moves on an ambiguous lookup
	for _, id := range []string{"cert_a", "cert_b"} {
		stored, err := certs.GetByID(id)
		require.NoError(t, err)
		require.Equal(t, int64(0), stored.VerificationCount)
	}
}

func TestVerifyCode_Mismatch(t *testing.T) {
	svc, certs, _ := newTestService(t)

	// A row whose stored content no longer hashes to its certified digest
	rec := &models.CertificateRecord{
		ID:               "cert_bad",
		UserID:           "user_1",
		Content:          "altered after signing",
		ContentHash:      crypto.HashContent("what was actually signed"),
		Signature:        strings.Repeat("ab", 32),
		PublicKey:        strings.Repeat("cd", 32),
		CreatedAt:        "2026-08-25T10:30:00.000Z",
		CreatorName:      "Ada",
		VerificationCode: "BADC0DE1",
	}
	require.NoError(t, certs.Create(rec))

	result, err := svc.VerifyCode("BADC0DE1")
	require.NoError(t, err)
	require.Equal(t, StatusMismatch, result.Status)
	require.Equal(t, "cert_bad", result.Certificate.ID)
}
