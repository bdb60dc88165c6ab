// Package formvalidator provides the rule primitives shared by every CRF
// rule set: conditional requiredness, applicability, other-specify,
// multi-select constraints and date ordering.
//
// Every primitive reads the submission's field store and returns nil or a
// *domain.FormError. A rule set is an ordered list of checks; Run stops at
// the first check that fails, so later checks are never evaluated in that
// pass.
package formvalidator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/effect-crf-validators/internal/domain"
)

// Generic messages.
const (
	RequiredMsg      = "This field is required."
	NotRequiredMsg   = "This field is not required."
	ApplicableMsg    = "This field is applicable."
	NotApplicableMsg = "This field is not applicable."
)

// Check is one step of a rule set.
type Check func(ctx context.Context, v *FormValidator) error

// FormValidator evaluates rule primitives against one submission.
type FormValidator struct {
	submission *domain.Submission
	data       domain.FieldStore
}

// New wraps a submission for validation. A nil field store is treated as an
// empty form.
func New(submission *domain.Submission) *FormValidator {
	data := submission.Fields
	if data == nil {
		data = domain.FieldStore{}
	}
	return &FormValidator{submission: submission, data: data}
}

// Data returns the cleaned data being validated.
func (v *FormValidator) Data() domain.FieldStore {
	return v.data
}

// Submission returns the submission being validated.
func (v *FormValidator) Submission() *domain.Submission {
	return v.submission
}

// Visit returns the visit context, or the zero visit when the submission
// carries none.
func (v *FormValidator) Visit() domain.Visit {
	if v.submission.Visit == nil {
		return domain.Visit{}
	}
	return *v.submission.Visit
}

// HasVisit reports whether the submission carries a visit context.
func (v *FormValidator) HasVisit() bool {
	return v.submission.Visit != nil
}

// ReportDatetime returns the form's report timestamp.
func (v *FormValidator) ReportDatetime() (time.Time, bool) {
	return v.submission.ReportDateTime()
}

// Run evaluates checks in order and returns the first error.
func (v *FormValidator) Run(ctx context.Context, checks ...Check) error {
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := check(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Raise builds a violation from a field to message mapping.
func Raise(kind domain.ErrorKind, messages map[string]string) error {
	return domain.NewFormError(kind, messages)
}

// RaiseFields attaches one message to every listed field.
func RaiseFields(kind domain.ErrorKind, message string, fields ...string) error {
	return domain.NewFieldsError(kind, message, fields...)
}

// RaiseInvalid raises an INVALID_ERROR on one field.
func RaiseInvalid(field, message string) error {
	return domain.NewFormError(domain.INVALID_ERROR, map[string]string{field: message})
}

// RaiseApplicable raises "This field is applicable." on field, followed by
// reason when given.
func RaiseApplicable(field, reason string) error {
	return domain.NewFormError(domain.APPLICABLE_ERROR, map[string]string{field: joinMsg(ApplicableMsg, reason)})
}

// RaiseNotApplicable raises "This field is not applicable." on field,
// followed by reason when given.
func RaiseNotApplicable(field, reason string) error {
	return domain.NewFormError(domain.NOT_APPLICABLE_ERROR, map[string]string{field: joinMsg(NotApplicableMsg, reason)})
}

// AsFormError extracts a FormError from err.
func AsFormError(err error) (*domain.FormError, bool) {
	var fe *domain.FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func joinMsg(base, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return base
	}
	return base + " " + extra
}
