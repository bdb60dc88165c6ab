package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Audit       AuditConfig     `mapstructure:"audit"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Vitals      VitalsConfig    `mapstructure:"vitals"`
	Schedule    ScheduleConfig  `mapstructure:"schedule"`
	Validation  ServiceConfig   `mapstructure:"validation"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TLSEnabled     bool          `mapstructure:"tls_enabled"`
	CertFile       string        `mapstructure:"cert_file"`
	KeyFile        string        `mapstructure:"key_file"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// CacheConfig configures the eligibility date cache tiers. An empty
// RedisAddr disables the shared tier.
type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	MemoryCacheSize int           `mapstructure:"memory_cache_size"`
	PoolSize        int           `mapstructure:"pool_size"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
}

// AuditConfig selects where validation outcomes are recorded.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"` // "postgres", "sqlite"
	DSN     string `mapstructure:"dsn"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// VitalsConfig holds the clinical thresholds for vital signs escalation.
type VitalsConfig struct {
	SysUpper     int     `mapstructure:"sys_upper"`
	DiaUpper     int     `mapstructure:"dia_upper"`
	G3FeverLower float64 `mapstructure:"g3_fever_lower"`
	G4FeverLower float64 `mapstructure:"g4_fever_lower"`
}

// ScheduleConfig lists the visit codes of the trial schedule in order. The
// first code is the baseline visit.
type ScheduleConfig struct {
	VisitCodes []string `mapstructure:"visit_codes"`
}

// ServiceConfig tunes the validation service.
type ServiceConfig struct {
	MaxWorkers   int `mapstructure:"max_workers"`
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// RateLimitConfig configures the per-client token bucket on the HTTP API.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}
