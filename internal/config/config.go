package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Vault    VaultConfig    `yaml:"vault"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// PublicOrigin is the externally visible base URL used when building
	// share links and QR payloads, e.g. https://signet.example.com
	PublicOrigin string `yaml:"public_origin"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// VaultConfig contains key vault configuration
type VaultConfig struct {
	// MasterSecret is stretched into the AES key protecting signer
	// private keys. Changing it makes every stored key unreadable.
	MasterSecret string `yaml:"master_secret"`
}

// AdminConfig contains admin configuration
type AdminConfig struct {
	Token string `yaml:"token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Server.PublicOrigin == "" {
		return fmt.Errorf("server.public_origin is required")
	}
	if u, err := url.Parse(c.Server.PublicOrigin); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.public_origin must be an absolute URL")
	}

	// Database validation
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Vault validation
	if len(c.Vault.MasterSecret) < 16 {
		return fmt.Errorf("vault.master_secret must be at least 16 characters")
	}
	if c.Vault.MasterSecret == "change-me-before-going-to-production" {
		fmt.Fprintf(os.Stderr, "WARNING: Using default vault master secret. Please change it in production!\n")
	}

	// Admin validation
	if c.Admin.Token == "" {
		return fmt.Errorf("admin.token is required")
	}
	if c.Admin.Token == "your-secure-admin-token-change-me-in-production" {
		fmt.Fprintf(os.Stderr, "WARNING: Using default admin token. Please change it in production!\n")
	}

	// Logging validation
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text'")
	}

	return nil
}

// ParseDuration parses a duration with support for days (e.g., "90d"),
// used for token expiry windows
func ParseDuration(s string) (time.Duration, error) {
	// Handle "d" suffix for days
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err != nil {
			return 0, err
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
