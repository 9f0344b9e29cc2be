package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signetlab/signet/internal/auth"
	"github.com/signetlab/signet/internal/config"
	"github.com/signetlab/signet/internal/crypto"
	"github.com/signetlab/signet/internal/db"
	"github.com/signetlab/signet/internal/db/repository"
	"github.com/signetlab/signet/internal/models"
)

var (
	configPath string
	cfg        *config.Config
	database   *db.DB
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Signet administration tool",
	Long:  "Administrative tool for managing Signet signers, credentials, certificates, and audit logs",
}

var signerCmd = &cobra.Command{
	Use:   "signer",
	Short: "Manage signer key pairs",
}

var signerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a key pair for a signer identity",
	RunE:  createSigner,
}

var signerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all signer key pairs",
	RunE:  listSigners,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer credentials",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer credential for a signer",
	RunE:  issueToken,
}

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Inspect issued certificates",
}

var certListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued certificates",
	RunE:  listCerts,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit log entries",
	RunE:  listAudit,
}

var (
	userID          string
	legacyPlaintext bool
	tokenLabel      string
	expiresIn       string
	listLimit       int
	auditAction     string
)

func init() {
	// Root flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/signet/config.yaml", "Config file path")

	// Signer create flags
	signerCreateCmd.Flags().StringVarP(&userID, "user-id", "u", "", "Signer identity (required)")
	signerCreateCmd.Flags().BoolVar(&legacyPlaintext, "legacy-plaintext", false, "Store the private key unencrypted, reproducing a pre-vault row")
	signerCreateCmd.MarkFlagRequired("user-id")

	// Token issue flags
	tokenIssueCmd.Flags().StringVarP(&userID, "user-id", "u", "", "Signer identity (required)")
	tokenIssueCmd.Flags().StringVar(&tokenLabel, "label", "", "Human-readable credential label")
	tokenIssueCmd.Flags().StringVar(&expiresIn, "expires-in", "", "Lifetime, e.g. 720h or 30d (default: never expires)")
	tokenIssueCmd.MarkFlagRequired("user-id")

	// Cert list flags
	certListCmd.Flags().StringVarP(&userID, "user-id", "u", "", "Only certificates for this signer")
	certListCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum rows")

	// Audit list flags
	auditListCmd.Flags().StringVarP(&userID, "user-id", "u", "", "Only entries for this signer")
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Only entries with this action")
	auditListCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum rows")

	// Add commands
	signerCmd.AddCommand(signerCreateCmd)
	signerCmd.AddCommand(signerListCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	certCmd.AddCommand(certListCmd)
	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(signerCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initDB() error {
	// Load configuration
	var err error
	cfg, err = config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Connect to database
	database, err = db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Provisioning may run before the server ever has; migrations are
	// guarded by schema_version and safe to repeat
	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func createSigner(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	publicKey, privateKey, err := crypto.GenerateSignerKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	keyRepo := repository.NewKeyPairRepository(database.DB)
	kp := &models.SignerKeyPair{
		UserID:    userID,
		PublicKey: publicKey,
	}

	if legacyPlaintext {
		kp.LegacyPrivateKey = privateKey
		if err := keyRepo.CreateLegacy(kp); err != nil {
			return fmt.Errorf("failed to store key pair: %w", err)
		}
	} else {
		vault, err := crypto.NewKeyVault(cfg.Vault.MasterSecret)
		if err != nil {
			return fmt.Errorf("failed to initialize key vault: %w", err)
		}
		kp.EncryptedPrivateKey, err = vault.EncryptKey(privateKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt private key: %w", err)
		}
		if err := keyRepo.Create(kp); err != nil {
			return fmt.Errorf("failed to store key pair: %w", err)
		}
	}

	fmt.Printf("\nSigner key pair created successfully!\n")
	fmt.Printf("Key ID: %d\n", kp.ID)
	fmt.Printf("User ID: %s\n", kp.UserID)
	fmt.Printf("Public key: %s\n", kp.PublicKey)
	if legacyPlaintext {
		fmt.Printf("\nWARNING: private key stored as PLAINTEXT (migration-era row for fallback testing)\n")
	}

	return nil
}

func listSigners(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	keyRepo := repository.NewKeyPairRepository(database.DB)
	pairs, err := keyRepo.List()
	if err != nil {
		return fmt.Errorf("failed to list signers: %w", err)
	}

	if len(pairs) == 0 {
		fmt.Println("No signers found")
		return nil
	}

	fmt.Printf("\nTotal key pairs: %d\n\n", len(pairs))
	fmt.Printf("%-5s %-20s %-10s %-20s %s\n", "ID", "User ID", "Storage", "Public Key", "Created")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, kp := range pairs {
		storage := "none"
		switch {
		case kp.EncryptedPrivateKey != "":
			storage = "encrypted"
		case kp.LegacyPrivateKey != "":
			storage = "plaintext"
		}
		fmt.Printf("%-5d %-20s %-10s %-20s %s\n",
			kp.ID,
			kp.UserID,
			storage,
			truncate(kp.PublicKey, 16),
			kp.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

func issueToken(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	var expiresAt *time.Time
	if expiresIn != "" {
		d, err := config.ParseDuration(expiresIn)
		if err != nil {
			return fmt.Errorf("invalid --expires-in: %w", err)
		}
		t := time.Now().UTC().Add(d)
		expiresAt = &t
	}

	issued, err := auth.NewAPIToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	tokenRepo := repository.NewAPITokenRepository(database.DB)
	token := &models.APIToken{
		UserID:    userID,
		TokenHash: issued.Hash,
		Label:     tokenLabel,
		ExpiresAt: expiresAt,
	}
	if err := tokenRepo.Create(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("\nToken issued successfully!\n")
	fmt.Printf("Token ID: %d\n", token.ID)
	fmt.Printf("User ID: %s\n", token.UserID)
	if token.Label != "" {
		fmt.Printf("Label: %s\n", token.Label)
	}
	if expiresAt != nil {
		fmt.Printf("Expires: %s\n", expiresAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Expires: never\n")
	}
	fmt.Printf("\nToken: %s\n", issued.Plain)
	fmt.Printf("\nStore this token now. Only its hash is kept; it cannot be shown again.\n")

	return nil
}

func listCerts(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	certRepo := repository.NewCertificateRepository(database.DB)

	var (
		certs []*models.CertificateRecord
		err   error
	)
	if userID != "" {
		certs, err = certRepo.ListByUserID(userID, listLimit)
	} else {
		certs, err = certRepo.ListRecent(listLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to list certificates: %w", err)
	}

	if len(certs) == 0 {
		fmt.Println("No certificates found")
		return nil
	}

	fmt.Printf("\nCertificates: %d\n\n", len(certs))
	fmt.Printf("%-36s %-20s %-10s %-8s %s\n", "ID", "Creator", "Code", "Verifs", "Created")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for _, cert := range certs {
		fmt.Printf("%-36s %-20s %-10s %-8d %s\n",
			cert.ID,
			truncate(cert.CreatorName, 20),
			cert.VerificationCode,
			cert.VerificationCount,
			cert.CreatedAt,
		)
	}

	return nil
}

func listAudit(cmd *cobra.Command, args []string) error {
	if err := initDB(); err != nil {
		return err
	}
	defer database.Close()

	auditRepo := repository.NewAuditRepository(database.DB)
	entries, err := auditRepo.List(userID, auditAction, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No audit entries found")
		return nil
	}

	fmt.Printf("\nAudit entries: %d\n\n", len(entries))
	fmt.Printf("%-5s %-20s %-20s %-15s %-8s %s\n", "ID", "Timestamp", "Action", "User ID", "Success", "Client IP")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for _, entry := range entries {
		success := "no"
		if entry.Success {
			success = "yes"
		}
		fmt.Printf("%-5d %-20s %-20s %-15s %-8s %s\n",
			entry.ID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Action,
			truncate(entry.UserID, 15),
			success,
			entry.ClientIP,
		)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
