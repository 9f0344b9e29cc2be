package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/auth"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

// ContextUserID is the gin context key carrying the authenticated signer id.
const ContextUserID = "auth_user_id"

const bearerPrefix = "Bearer "

// BearerAuth resolves the Authorization bearer credential to a signer
// user id. The credential is hashed and looked up; plaintext tokens are
// never stored or logged.
func BearerAuth(tokens *repository.APITokenRepository, audit *repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			logAuthFailure(audit, c, "missing bearer credential")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Missing bearer credential",
			})
			c.Abort()
			return
		}

		plain := strings.TrimSpace(header[len(bearerPrefix):])
		token, err := tokens.FindActiveByHash(auth.HashToken(plain))
		if errors.Is(err, repository.ErrTokenNotFound) {
			logAuthFailure(audit, c, "invalid or expired credential")
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or expired credential",
			})
			c.Abort()
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("token lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal error",
			})
			c.Abort()
			return
		}

		if err := tokens.UpdateLastUsed(token.ID); err != nil {
			log.Warn().Err(err).Msg("failed to update token last used")
			// Continue anyway
		}

		c.Set(ContextUserID, token.UserID)
		c.Next()
	}
}

// AdminAuth middleware checks for admin token
func AdminAuth(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Admin token required",
			})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Invalid admin token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func logAuthFailure(audit *repository.AuditRepository, c *gin.Context, reason string) {
	if audit == nil {
		return
	}
	err := audit.Create(&models.AuditLog{
		Action:    models.ActionAuthFailed,
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Success:   false,
		ErrorMsg:  reason,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to write auth audit entry")
	}
}
