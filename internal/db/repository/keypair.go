package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/signetlab/signet/internal/models"
)

// KeyPairRepository handles signer key pair data access
type KeyPairRepository struct {
	db *sql.DB
}

// NewKeyPairRepository creates a new key pair repository
func NewKeyPairRepository(db *sql.DB) *KeyPairRepository {
	return &KeyPairRepository{db: db}
}

// Create persists a new key pair, writing only the encrypted column
func (r *KeyPairRepository) Create(kp *models.SignerKeyPair) error {
	query := `
		INSERT INTO signer_keys (user_id, public_key, encrypted_private_key)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query,
		kp.UserID,
		kp.PublicKey,
		kp.EncryptedPrivateKey,
	)
	if err != nil {
		return fmt.Errorf("failed to create key pair: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	kp.ID = id
	kp.CreatedAt = time.Now()

	return nil
}

// CreateLegacy persists a key pair with a plaintext private key, filling
// the column normally only found in rows migrated from pre-vault
// installations. It exists so operators can reproduce such rows when
// testing the plaintext fallback path.
func (r *KeyPairRepository) CreateLegacy(kp *models.SignerKeyPair) error {
	query := `
		INSERT INTO signer_keys (user_id, public_key, private_key)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query,
		kp.UserID,
		kp.PublicKey,
		kp.LegacyPrivateKey,
	)
	if err != nil {
		return fmt.Errorf("failed to create key pair: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	kp.ID = id
	kp.CreatedAt = time.Now()

	return nil
}

// LatestByUserID retrieves the signer's most recently created key pair.
// The id tie-break matters because created_at has one-second granularity.
func (r *KeyPairRepository) LatestByUserID(userID string) (*models.SignerKeyPair, error) {
	query := `
		SELECT id, user_id, public_key, encrypted_private_key, private_key, created_at
		FROM signer_keys
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	kp, err := scanKeyPair(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrKeyPairNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair: %w", err)
	}

	return kp, nil
}

// ListByUserID lists all key pairs for a signer, newest first
func (r *KeyPairRepository) ListByUserID(userID string) ([]*models.SignerKeyPair, error) {
	query := `
		SELECT id, user_id, public_key, encrypted_private_key, private_key, created_at
		FROM signer_keys
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list key pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*models.SignerKeyPair

	for rows.Next() {
		kp, err := scanKeyPair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key pair: %w", err)
		}
		pairs = append(pairs, kp)
	}

	return pairs, rows.Err()
}

// List lists all key pairs, newest first
func (r *KeyPairRepository) List() ([]*models.SignerKeyPair, error) {
	query := `
		SELECT id, user_id, public_key, encrypted_private_key, private_key, created_at
		FROM signer_keys
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list key pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*models.SignerKeyPair

	for rows.Next() {
		kp, err := scanKeyPair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key pair: %w", err)
		}
		pairs = append(pairs, kp)
	}

	return pairs, rows.Err()
}

func scanKeyPair(row scanner) (*models.SignerKeyPair, error) {
	kp := &models.SignerKeyPair{}
	var encrypted, legacy sql.NullString

	err := row.Scan(
		&kp.ID,
		&kp.UserID,
		&kp.PublicKey,
		&encrypted,
		&legacy,
		&kp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if encrypted.Valid {
		kp.EncryptedPrivateKey = encrypted.String
	}
	if legacy.Valid {
		kp.LegacyPrivateKey = legacy.String
	}

	return kp, nil
}
