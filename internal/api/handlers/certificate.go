package handlers

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/compact"
	"github.com/signetlab/signet/internal/config"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/pkg/certurl"
)

// qrImageSize is the pixel edge of generated QR codes
const qrImageSize = 512

// CertificateHandler serves canonical certificate records and their QR
// exports
type CertificateHandler struct {
	config   *config.Config
	certRepo *repository.CertificateRepository
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(cfg *config.Config, certRepo *repository.CertificateRepository) *CertificateHandler {
	return &CertificateHandler{
		config:   cfg,
		certRepo: certRepo,
	}
}

// GetByID returns the canonical stored record for full re-verification
// GET /v1/certificates/:id
func (h *CertificateHandler) GetByID(c *gin.Context) {
	record, err := h.certRepo.GetByID(c.Param("id"))
	if errors.Is(err, repository.ErrCertificateNotFound) {
		RespondError(c, http.StatusNotFound, "Certificate not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("certificate lookup failed")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}

	c.JSON(http.StatusOK, record)
}

// QRCode renders the certificate's share link as a PNG QR code. The QR
// payload is the full viewer URL, so any camera app lands on the
// certificate page.
// GET /v1/certificates/:id/qr.png
func (h *CertificateHandler) QRCode(c *gin.Context) {
	record, err := h.certRepo.GetByID(c.Param("id"))
	if errors.Is(err, repository.ErrCertificateNotFound) {
		RespondError(c, http.StatusNotFound, "Certificate not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("certificate lookup failed")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}

	token, err := compact.Encode(record)
	if err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to encode compact token")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}
	shareURL, err := certurl.CertificateURL(h.config.Server.PublicOrigin, token)
	if err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to build certificate url")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}

	code, err := qr.Encode(shareURL, qr.M, qr.Auto)
	if err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to encode qr")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to scale qr")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		log.Error().Err(err).Str("cert_id", record.ID).Msg("failed to render qr png")
		RespondError(c, http.StatusInternalServerError, "Internal error")
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
