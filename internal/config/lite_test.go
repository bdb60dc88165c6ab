package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "DAY01", cfg.VisitCodes[0])
	assert.Len(t, cfg.VisitCodes, 9)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadLiteConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.Empty(t, cfg.EligibilityFile)
	assert.Equal(t, 4, cfg.MaxWorkers)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("CRF_DATA_DIR", "/tmp/test-crf")
	os.Setenv("CRF_ELIGIBILITY_FILE", "/tmp/eligibility.json")
	os.Setenv("CRF_VISIT_CODES", "1000, 1003 ,1009")
	os.Setenv("CRF_AUDIT_ENABLED", "true")
	os.Setenv("CRF_MAX_WORKERS", "16")
	os.Setenv("CRF_LOG_LEVEL", "debug")
	os.Setenv("CRF_LOG_FORMAT", "json")

	defer clearEnvVars(t)

	cfg, err := LoadLiteConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-crf", cfg.DataDir)
	assert.Equal(t, "/tmp/eligibility.json", cfg.EligibilityFile)
	assert.Equal(t, []string{"1000", "1003", "1009"}, cfg.VisitCodes)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, 16, cfg.MaxWorkers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_BlankVisitCodesIgnored(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	os.Setenv("CRF_VISIT_CODES", " , ")

	cfg, err := LoadLiteConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "DAY01", cfg.VisitCodes[0])
}

func TestLoadLiteConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"audit not a bool", "CRF_AUDIT_ENABLED", "perhaps"},
		{"workers not a number", "CRF_MAX_WORKERS", "many"},
		{"negative workers", "CRF_MAX_WORKERS", "-3"},
		{"zero workers", "CRF_MAX_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			defer clearEnvVars(t)

			os.Setenv(tt.key, tt.value)

			cfg, err := LoadLiteConfig(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadLiteConfig_DotEnvFile(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRF_LOG_LEVEL=error\nCRF_MAX_WORKERS=2\n"), 0600))

	cfg, err := LoadLiteConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MaxWorkers)
}

func TestLoadLiteConfig_EnvironmentWinsOverDotEnv(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	os.Setenv("CRF_LOG_LEVEL", "info")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRF_LOG_LEVEL=error\n"), 0600))

	cfg, err := LoadLiteConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLiteConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LiteConfig)
		wantErr bool
	}{
		{"defaults", func(c *LiteConfig) {}, false},
		{"no visit codes", func(c *LiteConfig) { c.VisitCodes = nil }, true},
		{"zero workers", func(c *LiteConfig) { c.MaxWorkers = 0 }, true},
		{"bad log format", func(c *LiteConfig) { c.LogFormat = "xml" }, true},
		{"upper case format", func(c *LiteConfig) { c.LogFormat = "JSON" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLiteConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLiteConfig_AuditDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.crf-validator"}

	path := cfg.AuditDBPath()

	assert.Equal(t, "/home/user/.crf-validator/audit.db", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "crf")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"CRF_DATA_DIR",
		"CRF_ELIGIBILITY_FILE",
		"CRF_VISIT_CODES",
		"CRF_AUDIT_ENABLED",
		"CRF_MAX_WORKERS",
		"CRF_LOG_LEVEL",
		"CRF_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
