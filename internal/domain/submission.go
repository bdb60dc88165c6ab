package domain

import (
	"fmt"
	"strings"
	"time"
)

// Visit describes where a form sits in the trial schedule. It is built by
// the scheduling collaborator before validation and is read-only to the rule
// sets. A sequence of 0 is the scheduled visit, anything greater is an
// unscheduled extra encounter at the same timepoint.
type Visit struct {
	VisitCode         VisitCode `json:"visit_code"`
	VisitCodeSequence int       `json:"visit_code_sequence"`
	AssessmentType    Code      `json:"assessment_type,omitempty"`
	AssessmentWho     Code      `json:"assessment_who,omitempty"`
	InfoSource        Code      `json:"info_source,omitempty"`
	ReportDatetime    time.Time `json:"report_datetime,omitempty"`
}

// IsScheduled reports whether the visit is the scheduled encounter.
func (v Visit) IsScheduled() bool {
	return v.VisitCodeSequence == 0
}

// Submission is one form instance handed to the validation service.
type Submission struct {
	Form              string                `json:"form"`
	SubjectIdentifier string                `json:"subject_identifier"`
	ReportDatetime    time.Time             `json:"report_datetime"`
	Visit             *Visit                `json:"visit,omitempty"`
	Fields            FieldStore            `json:"fields"`
	Related           map[string]FieldStore `json:"related,omitempty"`
}

// Validate checks that the submission carries what every rule set needs.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.Form) == "" {
		return NewValidationError("form", "form name is required", s.Form)
	}
	if s.Fields == nil {
		return NewValidationError("fields", "fields are required", nil)
	}
	if s.Visit != nil && s.Visit.VisitCodeSequence < 0 {
		return NewValidationError("visit.visit_code_sequence", "cannot be negative", s.Visit.VisitCodeSequence)
	}
	return nil
}

// ReportDateTime returns the form's report timestamp, falling back to a
// "report_datetime" field and then to the visit's report timestamp.
func (s *Submission) ReportDateTime() (time.Time, bool) {
	if !s.ReportDatetime.IsZero() {
		return s.ReportDatetime, true
	}
	if t, ok := s.Fields.DateTime("report_datetime"); ok {
		return t, true
	}
	if s.Visit != nil && !s.Visit.ReportDatetime.IsZero() {
		return s.Visit.ReportDatetime, true
	}
	return time.Time{}, false
}

// RelatedForm returns the cleaned data of another CRF captured at the same
// visit, if the caller attached it.
func (s *Submission) RelatedForm(form string) (FieldStore, bool) {
	if s.Related == nil {
		return nil, false
	}
	store, ok := s.Related[form]
	return store, ok
}

// ValidationError represents malformed input to the service itself, as
// opposed to a protocol violation inside a form.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ValidationResult is what the service returns for one submission.
type ValidationResult struct {
	ID                string        `json:"id"`
	Form              string        `json:"form"`
	SubjectIdentifier string        `json:"subject_identifier,omitempty"`
	VisitCode         VisitCode     `json:"visit_code,omitempty"`
	VisitCodeSequence int           `json:"visit_code_sequence"`
	Valid             bool          `json:"valid"`
	Error             *FormError    `json:"error,omitempty"`
	Duration          time.Duration `json:"duration_ns"`
	ValidatedAt       time.Time     `json:"validated_at"`
	RequestID         string        `json:"request_id,omitempty"`
}
