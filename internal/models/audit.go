package models

import "time"

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	ClientIP  string    `json:"client_ip"`
	UserAgent string    `json:"user_agent,omitempty"`
	Success   bool      `json:"success"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Details   string    `json:"details,omitempty"` // JSON
}

// Audit action constants
const (
	ActionCertSign          = "cert_sign"
	ActionCertVerify        = "cert_verify"
	ActionAdminCreateSigner = "admin_create_signer"
	ActionAdminIssueToken   = "admin_issue_token"
	ActionAuthFailed        = "auth_failed"
)
