package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/auth"
	"github.com/signetlab/signet/internal/config"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

// AdminHandler handles signer and credential provisioning
type AdminHandler struct {
	vault     *crypto.KeyVault
	keyRepo   *repository.KeyPairRepository
	tokenRepo *repository.APITokenRepository
	auditRepo *repository.AuditRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	vault *crypto.KeyVault,
	keyRepo *repository.KeyPairRepository,
	tokenRepo *repository.APITokenRepository,
	auditRepo *repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		vault:     vault,
		keyRepo:   keyRepo,
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
	}
}

// CreateSignerRequest represents a signer provisioning request
type CreateSignerRequest struct {
	UserID string `json:"userId" binding:"required"`
	Label  string `json:"label"`
}

// CreateSignerResponse represents a signer provisioning response. The
// private key is generated, encrypted and stored server-side; it is never
// part of any response.
type CreateSignerResponse struct {
	Success   bool   `json:"success"`
	UserID    string `json:"userId"`
	PublicKey string `json:"publicKey"`
}

// CreateSigner provisions a fresh key pair for a signer identity
// POST /v1/admin/signers
func (h *AdminHandler) CreateSigner(c *gin.Context) {
	var req CreateSignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	clientIP := GetClientIP(c)
	userAgent := c.GetHeader("User-Agent")

	publicKey, privateKey, err := crypto.GenerateSignerKeyPair()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate key pair")
		RespondError(c, http.StatusInternalServerError, "Failed to generate key pair")
		return
	}

	encrypted, err := h.vault.EncryptKey(privateKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to encrypt private key")
		RespondError(c, http.StatusInternalServerError, "Failed to encrypt private key")
		return
	}

	kp := &models.SignerKeyPair{
		UserID:              req.UserID,
		PublicKey:           publicKey,
		EncryptedPrivateKey: encrypted,
	}
	if err := h.keyRepo.Create(kp); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to store key pair")
		RespondError(c, http.StatusInternalServerError, "Failed to store key pair")
		return
	}

	if err := h.auditRepo.Create(&models.AuditLog{
		Action:    models.ActionAdminCreateSigner,
		UserID:    req.UserID,
		ClientIP:  clientIP,
		UserAgent: userAgent,
		Success:   true,
		Details: marshalDetails(map[string]interface{}{
			"label":      req.Label,
			"public_key": publicKey,
		}),
	}); err != nil {
		log.Warn().Err(err).Str("user_id", req.UserID).Msg("failed to write audit entry")
	}

	c.JSON(http.StatusOK, CreateSignerResponse{
		Success:   true,
		UserID:    req.UserID,
		PublicKey: publicKey,
	})
}

// IssueTokenRequest represents a credential issuance request. ExpiresIn
// accepts Go duration syntax plus a "d" days suffix; empty means the
// token never expires.
type IssueTokenRequest struct {
	UserID    string `json:"userId" binding:"required"`
	Label     string `json:"label"`
	ExpiresIn string `json:"expiresIn"`
}

// IssueTokenResponse carries the plaintext token. This is the only time
// it is ever visible; only its hash is stored.
type IssueTokenResponse struct {
	Success   bool       `json:"success"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// IssueToken mints a bearer credential for a signer identity
// POST /v1/admin/tokens
func (h *AdminHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	clientIP := GetClientIP(c)
	userAgent := c.GetHeader("User-Agent")

	var expiresAt *time.Time
	if req.ExpiresIn != "" {
		d, err := config.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			RespondError(c, http.StatusBadRequest, "Invalid expiresIn duration")
			return
		}
		t := time.Now().UTC().Add(d)
		expiresAt = &t
	}

	issued, err := auth.NewAPIToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token")
		RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	token := &models.APIToken{
		UserID:    req.UserID,
		TokenHash: issued.Hash,
		Label:     req.Label,
		ExpiresAt: expiresAt,
	}
	if err := h.tokenRepo.Create(token); err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to store token")
		RespondError(c, http.StatusInternalServerError, "Failed to store token")
		return
	}

	if err := h.auditRepo.Create(&models.AuditLog{
		Action:    models.ActionAdminIssueToken,
		UserID:    req.UserID,
		ClientIP:  clientIP,
		UserAgent: userAgent,
		Success:   true,
		Details: marshalDetails(map[string]interface{}{
			"label":    req.Label,
			"token_id": token.ID,
		}),
	}); err != nil {
		log.Warn().Err(err).Str("user_id", req.UserID).Msg("failed to write audit entry")
	}

	c.JSON(http.StatusOK, IssueTokenResponse{
		Success:   true,
		Token:     issued.Plain,
		ExpiresAt: expiresAt,
	})
}
