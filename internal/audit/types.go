// Package audit provides storage for validation outcomes. Every pass through
// the validation service leaves a record so data managers can review which
// forms failed, on which fields, and how long validation took.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/effect-crf-validators/internal/domain"
)

// Record is one stored validation outcome.
type Record struct {
	ID                string              `json:"id"`
	Form              string              `json:"form"`
	SubjectIdentifier string              `json:"subject_identifier,omitempty"`
	VisitCode         string              `json:"visit_code,omitempty"`
	VisitCodeSequence int                 `json:"visit_code_sequence"`
	Valid             bool                `json:"valid"`
	ErrorKind         string              `json:"error_kind,omitempty"` // Kind of the failing check
	Errors            map[string][]string `json:"errors,omitempty"`     // Field -> messages
	Duration          time.Duration       `json:"duration_ns"`
	RequestID         string              `json:"request_id,omitempty"`
	ValidatedAt       time.Time           `json:"validated_at"`
}

// RecordFromResult converts a service result into its stored form.
func RecordFromResult(result *domain.ValidationResult) *Record {
	rec := &Record{
		ID:                result.ID,
		Form:              result.Form,
		SubjectIdentifier: result.SubjectIdentifier,
		VisitCode:         string(result.VisitCode),
		VisitCodeSequence: result.VisitCodeSequence,
		Valid:             result.Valid,
		Duration:          result.Duration,
		RequestID:         result.RequestID,
		ValidatedAt:       result.ValidatedAt.UTC(),
	}
	if result.Error != nil {
		rec.ErrorKind = string(result.Error.Kind)
		rec.Errors = result.Error.Messages
	}
	return rec
}

// Filter narrows List and Count. Zero values do not filter.
type Filter struct {
	Form              string
	SubjectIdentifier string
	VisitCode         string
	Valid             *bool
	Since             time.Time
	Limit             int
	Offset            int
}

// DefaultListLimit caps List when Filter.Limit is unset.
const DefaultListLimit = 100

// Store defines the interface for audit storage operations. It satisfies
// domain.ResultRecorder.
type Store interface {
	// RecordResult stores the outcome of one validation pass.
	RecordResult(ctx context.Context, result *domain.ValidationResult) error

	// Save stores a record. Records are immutable; saving an existing ID fails.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID, or nil if there is none.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns matching records, newest first.
	List(ctx context.Context, filter Filter) ([]*Record, error)

	// Count returns the number of matching records, ignoring Limit and Offset.
	Count(ctx context.Context, filter Filter) (int64, error)

	// ExportJSON writes every matching record to writer.
	ExportJSON(ctx context.Context, filter Filter, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"records"`
}

// maxExportLimit is the maximum number of records to export at once.
const maxExportLimit = 1000000

func exportJSON(ctx context.Context, store Store, filter Filter, writer io.Writer) error {
	filter.Limit = maxExportLimit
	filter.Offset = 0
	records, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    records,
	})
}
