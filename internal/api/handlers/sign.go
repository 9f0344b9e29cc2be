package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/api/middleware"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

// SignHandler issues certificates for authenticated signers
type SignHandler struct {
	vault     *crypto.KeyVault
	keyRepo   *repository.KeyPairRepository
	certRepo  *repository.CertificateRepository
	auditRepo *repository.AuditRepository
}

// NewSignHandler creates a new signing handler
func NewSignHandler(
	vault *crypto.KeyVault,
	keyRepo *repository.KeyPairRepository,
	certRepo *repository.CertificateRepository,
	auditRepo *repository.AuditRepository,
) *SignHandler {
	return &SignHandler{
		vault:     vault,
		keyRepo:   keyRepo,
		certRepo:  certRepo,
		auditRepo: auditRepo,
	}
}

// SignRequest represents a content signing request. Fields are validated
// in the handler, not by binding tags: the protocol checks them only
// after the caller's key material has been retrieved and opened.
type SignRequest struct {
	Content     string   `json:"content"`
	CreatorName string   `json:"creatorName"`
	Thumbnail   string   `json:"thumbnail"`
	Platforms   []string `json:"platforms"`
}

// SignResponse represents a successful signing response
type SignResponse struct {
	Success       bool                      `json:"success"`
	SignedContent *models.CertificateRecord `json:"signedContent"`
}

// SignContent signs a piece of content for the authenticated caller
// POST /v1/sign
func (h *SignHandler) SignContent(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	clientIP := GetClientIP(c)
	userAgent := c.GetHeader("User-Agent")

	// Fetch the caller's current key pair
	keyPair, err := h.keyRepo.LatestByUserID(userID)
	if errors.Is(err, repository.ErrKeyPairNotFound) {
		RespondError(c, http.StatusNotFound, "No signing key found for this account")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("key pair lookup failed")
		RespondError(c, http.StatusInternalServerError, "Unable to sign content")
		return
	}

	// Open the private key; legacy plaintext rows pass through the vault
	// unchanged
	material, err := keyPair.Material()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("key pair has no usable material")
		RespondError(c, http.StatusInternalServerError, "Unable to sign content")
		return
	}
	privateKey, err := h.vault.OpenPrivateKey(material)
	if err != nil {
		// No cryptographic detail leaves the server
		log.Error().Err(err).Str("user_id", userID).Msg("private key decryption failed")
		RespondError(c, http.StatusInternalServerError, "Unable to sign content")
		return
	}

	// Field validation runs after key retrieval: the 404 for key-less
	// accounts takes precedence over the 400, and existing clients depend
	// on that order
	if req.Content == "" || req.CreatorName == "" {
		RespondError(c, http.StatusBadRequest, "content and creatorName are required")
		return
	}

	createdAt := models.ISOTimestamp(time.Now())
	contentHash := crypto.HashContent(req.Content)
	signature := crypto.Sign(contentHash, privateKey, createdAt)

	platforms := req.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	record := &models.CertificateRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		Content:          req.Content,
		ContentHash:      contentHash,
		Signature:        signature,
		PublicKey:        keyPair.PublicKey,
		CreatedAt:        createdAt,
		CreatorName:      req.CreatorName,
		VerificationCode: crypto.VerificationCode(signature, contentHash),
		Platforms:        platforms,
		Thumbnail:        req.Thumbnail,
	}

	if err := h.certRepo.Create(record); err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to persist certificate")
		RespondError(c, http.StatusInternalServerError, "Failed to store certificate")
		return
	}

	c.JSON(http.StatusOK, SignResponse{
		Success:       true,
		SignedContent: record,
	})

	// Best-effort audit after the response; a failure here never affects
	// the signed certificate
	if err := h.auditRepo.Create(&models.AuditLog{
		Action:    models.ActionCertSign,
		UserID:    userID,
		ClientIP:  clientIP,
		UserAgent: userAgent,
		Success:   true,
		Details: marshalDetails(map[string]interface{}{
			"cert_id":           record.ID,
			"verification_code": record.VerificationCode,
		}),
	}); err != nil {
		log.Warn().Err(err).Str("cert_id", record.ID).Msg("failed to write audit entry")
	}
}
