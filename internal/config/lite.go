// Package config provides configuration management for the validation
// service. This file contains the lightweight configuration used by the
// offline command-line validator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LiteConfig is a simplified configuration for offline validation.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the audit database

	// Context providers
	EligibilityFile string   // JSON file mapping subject identifiers to eligibility dates
	VisitCodes      []string // Visit schedule, baseline first

	// Audit
	AuditEnabled bool

	// Validation
	MaxWorkers int

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".crf-validator")

	return &LiteConfig{
		DataDir:      dataDir,
		VisitCodes:   []string{"DAY01", "DAY03", "DAY09", "DAY14", "WEEK04", "WEEK06", "WEEK10", "WEEK16", "WEEK24"},
		AuditEnabled: false,
		MaxWorkers:   4,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// LoadLiteConfig loads configuration from environment variables, after
// reading any .env files present. Falls back to defaults if not set and
// rejects values that do not parse.
func LoadLiteConfig(envFiles ...string) (*LiteConfig, error) {
	loadEnvFiles(envFiles...)

	cfg := DefaultLiteConfig()

	if v := os.Getenv("CRF_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	cfg.EligibilityFile = os.Getenv("CRF_ELIGIBILITY_FILE")

	if v := os.Getenv("CRF_VISIT_CODES"); v != "" {
		codes := make([]string, 0)
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			cfg.VisitCodes = codes
		}
	}

	if v := os.Getenv("CRF_AUDIT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CRF_AUDIT_ENABLED %q: %w", v, err)
		}
		cfg.AuditEnabled = b
	}

	if v := os.Getenv("CRF_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CRF_MAX_WORKERS %q: %w", v, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid CRF_MAX_WORKERS %q: must be positive", v)
		}
		cfg.MaxWorkers = n
	}

	if v := os.Getenv("CRF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CRF_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// loadEnvFiles reads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func loadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Validate checks the configuration for unusable values.
func (c *LiteConfig) Validate() error {
	if len(c.VisitCodes) == 0 {
		return fmt.Errorf("at least one visit code is required")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return nil
}

// AuditDBPath returns the path to the audit SQLite database.
func (c *LiteConfig) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
