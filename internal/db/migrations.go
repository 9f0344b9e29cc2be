package db

import (
	"database/sql"
	"fmt"
)

// RunMigrations executes all database migrations
func RunMigrations(db *DB) error {
	// Check if schema_version table exists
	var tableExists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if !tableExists {
		// First time initialization
		if err := initializeSchema(db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow(`
		SELECT version FROM schema_version
		ORDER BY applied_at DESC LIMIT 1
	`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply migrations if needed
	// Currently only version 1 exists
	if currentVersion < 1 {
		return fmt.Errorf("invalid schema version: %d", currentVersion)
	}

	return nil
}

// initializeSchema creates all tables for a new database
func initializeSchema(db *DB) error {
	tx, err := db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Schema version table
	if err := execSQL(tx, schemaVersionTable); err != nil {
		return err
	}

	// Certificates table
	if err := execSQL(tx, certificatesTable); err != nil {
		return err
	}
	if err := execSQL(tx, certificatesIndexes); err != nil {
		return err
	}

	// Signer keys table
	if err := execSQL(tx, signerKeysTable); err != nil {
		return err
	}
	if err := execSQL(tx, signerKeysIndexes); err != nil {
		return err
	}

	// API tokens table
	if err := execSQL(tx, apiTokensTable); err != nil {
		return err
	}
	if err := execSQL(tx, apiTokensIndexes); err != nil {
		return err
	}

	// Audit logs table
	if err := execSQL(tx, auditLogsTable); err != nil {
		return err
	}
	if err := execSQL(tx, auditLogsIndexes); err != nil {
		return err
	}

	// Insert initial schema version
	if err := execSQL(tx, `INSERT INTO schema_version (version) VALUES (1)`); err != nil {
		return err
	}

	return tx.Commit()
}

// execSQL executes a SQL statement
func execSQL(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}

// Schema definitions
const (
	schemaVersionTable = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	// created_at is TEXT, not DATETIME: the rendered ISO-8601 string is a
	// signature input and must come back from storage byte-identical.
	certificatesTable = `
CREATE TABLE certificates (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL,
    content            TEXT NOT NULL,
    content_hash       TEXT NOT NULL,
    signature          TEXT NOT NULL,
    public_key         TEXT NOT NULL,
    created_at         TEXT NOT NULL,
    creator_name       TEXT NOT NULL,
    verification_code  TEXT NOT NULL,
    platforms          TEXT NOT NULL DEFAULT '[]',
    thumbnail          TEXT,
    verification_count INTEGER NOT NULL DEFAULT 0
)`

	certificatesIndexes = `
CREATE INDEX idx_certs_user_id ON certificates(user_id);
CREATE INDEX idx_certs_verification_code ON certificates(verification_code);
CREATE INDEX idx_certs_content_hash ON certificates(content_hash);
CREATE INDEX idx_certs_created_at ON certificates(created_at)`

	// private_key holds plaintext keys from pre-vault installations. The
	// server only reads it; the sole writer is the admin CLI's
	// legacy-plaintext flag for reproducing such rows.
	signerKeysTable = `
CREATE TABLE signer_keys (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id               TEXT NOT NULL,
    public_key            TEXT NOT NULL,
    encrypted_private_key TEXT,
    private_key           TEXT,
    created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	signerKeysIndexes = `
CREATE INDEX idx_signer_keys_user_id ON signer_keys(user_id);
CREATE INDEX idx_signer_keys_created_at ON signer_keys(created_at)`

	apiTokensTable = `
CREATE TABLE api_tokens (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id         TEXT NOT NULL,
    token_hash      TEXT NOT NULL UNIQUE,
    label           TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at      DATETIME,
    last_used_at    DATETIME
)`

	apiTokensIndexes = `
CREATE INDEX idx_tokens_user_id ON api_tokens(user_id);
CREATE INDEX idx_tokens_hash ON api_tokens(token_hash);
CREATE INDEX idx_tokens_expires_at ON api_tokens(expires_at)`

	auditLogsTable = `
CREATE TABLE audit_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    action      TEXT NOT NULL,
    user_id     TEXT,
    client_ip   TEXT NOT NULL,
    user_agent  TEXT,
    success     INTEGER NOT NULL,
    error_msg   TEXT,
    details     TEXT
)`

	auditLogsIndexes = `
CREATE INDEX idx_audit_timestamp ON audit_logs(timestamp);
CREATE INDEX idx_audit_action ON audit_logs(action);
CREATE INDEX idx_audit_user_id ON audit_logs(user_id);
CREATE INDEX idx_audit_success ON audit_logs(success)`
)
