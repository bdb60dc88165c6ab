package domain

import (
	"context"
	"time"
)

// BaselineChecker decides whether a visit is the subject's baseline visit.
type BaselineChecker interface {
	IsBaseline(visit Visit) bool
}

// ScheduleInfo extends BaselineChecker with the visit titles shown in
// messages.
type ScheduleInfo interface {
	BaselineChecker
	Title(code VisitCode) string
}

// EligibilityProvider returns the date a subject became eligible for the
// trial. Implementations return an error wrapping ErrNotFound for unknown
// subjects.
type EligibilityProvider interface {
	EligibilityDate(ctx context.Context, subjectIdentifier string) (time.Time, error)
}

// VitalsThresholds exposes the clinical cut-offs used to escalate vital
// signs readings to adverse events, with the threshold values themselves for
// message formatting.
type VitalsThresholds interface {
	HasSevereHypertension(sys, dia int) bool
	HasG3Fever(temperature float64) bool
	HasG4Fever(temperature float64) bool
	SysUpper() int
	DiaUpper() int
	G3FeverLower() float64
}

// ResultRecorder persists validation outcomes for the audit trail.
type ResultRecorder interface {
	RecordResult(ctx context.Context, result *ValidationResult) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
