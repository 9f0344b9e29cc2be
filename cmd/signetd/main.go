package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/signetlab/signet/internal/api"
	"github.com/signetlab/signet/internal/config"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/logger"
	"github.com/signetlab/signet/internal/verify"
)

var (
	// Version information (set via ldflags)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "/etc/signet/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Signet Server\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("version", Version).Str("commit", Commit).Msg("starting signet server")

	// Initialize database
	log.Info().Str("path", cfg.Database.Path).Msg("connecting to database")
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Key vault derives its AES key once, at startup
	vault, err := crypto.NewKeyVault(cfg.Vault.MasterSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize key vault")
	}

	// Initialize repositories
	keyRepo := repository.NewKeyPairRepository(database.DB)
	certRepo := repository.NewCertificateRepository(database.DB)
	tokenRepo := repository.NewAPITokenRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	// Verification service
	verifier := verify.NewService(certRepo, log.Logger)

	// Create HTTP server
	server := api.NewServer(
		cfg,
		vault,
		keyRepo,
		certRepo,
		tokenRepo,
		auditRepo,
		verifier,
	)

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddr).Msg("starting http server")
		if err := server.Run(); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Info().Msg("shutting down server")

	// Cleanup
	database.Close()

	log.Info().Msg("server stopped")
}
