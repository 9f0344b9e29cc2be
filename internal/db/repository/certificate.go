package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/signetlab/signet/internal/models"
)

// CertificateRepository handles certificate record data access
type CertificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateColumns = `
	id, user_id, content, content_hash, signature, public_key,
	created_at, creator_name, verification_code, platforms, thumbnail,
	verification_count`

// Create persists a freshly signed certificate. The caller assigns the id
// and the rendered created_at string; both are stored verbatim.
func (r *CertificateRepository) Create(cert *models.CertificateRecord) error {
	platforms, err := encodePlatforms(cert.Platforms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO certificates (
			id, user_id, content, content_hash, signature, public_key,
			created_at, creator_name, verification_code, platforms, thumbnail
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		cert.ID,
		cert.UserID,
		cert.Content,
		cert.ContentHash,
		cert.Signature,
		cert.PublicKey,
		cert.CreatedAt,
		cert.CreatorName,
		cert.VerificationCode,
		platforms,
		nullString(cert.Thumbnail),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate record: %w", err)
	}

	return nil
}

// GetByID retrieves the canonical record for a certificate id
func (r *CertificateRepository) GetByID(id string) (*models.CertificateRecord, error) {
	query := `SELECT` + certificateColumns + `
		FROM certificates
		WHERE id = ?
	`

	cert, err := scanCertificate(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return cert, nil
}

// ListByVerificationCode retrieves every record carrying the given code.
// Codes are not unique; zero, one, or several records may come back.
func (r *CertificateRepository) ListByVerificationCode(code string) ([]*models.CertificateRecord, error) {
	query := `SELECT` + certificateColumns + `
		FROM certificates
		WHERE verification_code = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates by code: %w", err)
	}
	defer rows.Close()

	return collectCertificates(rows)
}

// ListByUserID lists a signer's certificates, newest first
func (r *CertificateRepository) ListByUserID(userID string, limit int) ([]*models.CertificateRecord, error) {
	query := `SELECT` + certificateColumns + `
		FROM certificates
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	return collectCertificates(rows)
}

// ListRecent lists the most recently issued certificates across all signers
func (r *CertificateRepository) ListRecent(limit int) ([]*models.CertificateRecord, error) {
	query := `SELECT` + certificateColumns + `
		FROM certificates
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	return collectCertificates(rows)
}

// IncrementVerificationCount bumps the viewer counter in a single UPDATE
// so concurrent verifications cannot lose increments.
func (r *CertificateRepository) IncrementVerificationCount(id string) error {
	query := `
		UPDATE certificates
		SET verification_count = verification_count + 1
		WHERE id = ?
	`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to increment verification count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCertificateNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCertificate(row scanner) (*models.CertificateRecord, error) {
	cert := &models.CertificateRecord{}
	var platforms string
	var thumbnail sql.NullString

	err := row.Scan(
		&cert.ID,
		&cert.UserID,
		&cert.Content,
		&cert.ContentHash,
		&cert.Signature,
		&cert.PublicKey,
		&cert.CreatedAt,
		&cert.CreatorName,
		&cert.VerificationCode,
		&platforms,
		&thumbnail,
		&cert.VerificationCount,
	)
	if err != nil {
		return nil, err
	}

	cert.Platforms, err = decodePlatforms(platforms)
	if err != nil {
		return nil, err
	}
	if thumbnail.Valid {
		cert.Thumbnail = thumbnail.String
	}

	return cert, nil
}

func collectCertificates(rows *sql.Rows) ([]*models.CertificateRecord, error) {
	var certs []*models.CertificateRecord

	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	return certs, rows.Err()
}

// Platform tags are stored as a JSON array in a TEXT column
func encodePlatforms(platforms []string) (string, error) {
	if platforms == nil {
		platforms = []string{}
	}
	data, err := json.Marshal(platforms)
	if err != nil {
		return "", fmt.Errorf("failed to encode platforms: %w", err)
	}
	return string(data), nil
}

func decodePlatforms(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var platforms []string
	if err := json.Unmarshal([]byte(raw), &platforms); err != nil {
		return nil, fmt.Errorf("failed to decode platforms: %w", err)
	}
	if platforms == nil {
		platforms = []string{}
	}
	return platforms, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
