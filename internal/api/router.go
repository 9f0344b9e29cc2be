package api

import (
	"github.com/gin-gonic/gin"

	"github.com/signetlab/signet/internal/api/handlers"
	"github.com/signetlab/signet/internal/api/middleware"
	"github.com/signetlab/signet/internal/config"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/verify"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	config *config.Config
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	vault *crypto.KeyVault,
	keyRepo *repository.KeyPairRepository,
	certRepo *repository.CertificateRepository,
	tokenRepo *repository.APITokenRepository,
	auditRepo *repository.AuditRepository,
	verifier *verify.Service,
) *Server {
	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	// Create handlers
	signHandler := handlers.NewSignHandler(vault, keyRepo, certRepo, auditRepo)
	certHandler := handlers.NewCertificateHandler(cfg, certRepo)
	verifyHandler := handlers.NewVerifyHandler(verifier, auditRepo)
	adminHandler := handlers.NewAdminHandler(vault, keyRepo, tokenRepo, auditRepo)

	// Public viewer endpoints. These are the URLs embedded in QR codes
	// and share links, so their paths are wire-frozen.
	router.GET("/certificate", verifyHandler.ViewCertificate)
	router.GET("/verify", verifyHandler.VerifyByCode)

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Signing requires a bearer credential
		v1.POST("/sign", middleware.BearerAuth(tokenRepo, auditRepo), signHandler.SignContent)

		// Canonical certificate records
		certs := v1.Group("/certificates")
		{
			certs.GET("/:id", certHandler.GetByID)
			certs.GET("/:id/qr.png", certHandler.QRCode)
		}

		// Admin endpoints (require admin token)
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.Admin.Token))
		{
			admin.POST("/signers", adminHandler.CreateSigner)
			admin.POST("/tokens", adminHandler.IssueToken)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	return s.router.Run(s.config.Server.ListenAddr)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
