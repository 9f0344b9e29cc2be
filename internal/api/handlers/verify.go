package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
	"github.com/signetlab/signet/internal/verify"
)

// VerifyHandler serves viewer-facing verification lookups
type VerifyHandler struct {
	verifier  *verify.Service
	auditRepo *repository.AuditRepository
}

// NewVerifyHandler creates a new verification handler
func NewVerifyHandler(verifier *verify.Service, auditRepo *repository.AuditRepository) *VerifyHandler {
	return &VerifyHandler{
		verifier:  verifier,
		auditRepo: auditRepo,
	}
}

// ViewCertificate resolves a compact token from a share link. Invalid and
// unknown tokens are display states, not transport errors, so they come
// back as 200 with a status field.
// GET /certificate?d=<token>  (legacy: ?data=<token>)
func (h *VerifyHandler) ViewCertificate(c *gin.Context) {
	token := c.Query("d")
	if token == "" {
		// Links minted by older clients use data=
		token = c.Query("data")
	}

	result, err := h.verifier.VerifyToken(token)
	if err != nil {
		log.Error().Err(err).Msg("token verification failed")
		RespondError(c, http.StatusInternalServerError, "Verification temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, result)
	h.auditLookup(c, result)
}

// VerifyByCode resolves a bare 8-character verification code.
// GET /verify?code=<code>
func (h *VerifyHandler) VerifyByCode(c *gin.Context) {
	result, err := h.verifier.VerifyCode(c.Query("code"))
	if err != nil {
		log.Error().Err(err).Msg("code verification failed")
		RespondError(c, http.StatusInternalServerError, "Verification temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, result)
	h.auditLookup(c, result)
}

// auditLookup records viewer verifications, best-effort
func (h *VerifyHandler) auditLookup(c *gin.Context, result *verify.Result) {
	details := map[string]interface{}{"status": string(result.Status)}
	if result.Certificate != nil && result.Certificate.ID != "" {
		details["cert_id"] = result.Certificate.ID
	}

	err := h.auditRepo.Create(&models.AuditLog{
		Action:    models.ActionCertVerify,
		ClientIP:  GetClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Success:   result.Status == verify.StatusVerified || result.Status == verify.StatusPartial,
		Details:   marshalDetails(details),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to write audit entry")
	}
}
