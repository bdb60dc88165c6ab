// Package domain contains the shared vocabulary of the CRF validation service:
// protocol response codes, validation error kinds, form submissions and the
// context provider contracts consumed by the per-form rule sets.
//
// Response codes follow the EDC controlled vocabulary used by the trial's
// data-capture system. They are closed-set tokens and must compare by exact
// equality, never by prefix or case-folding.
package domain

import (
	"errors"
	"fmt"
)

// Code is a protocol-defined response token stored in a choice field or
// carried as the name of a multi-select option.
type Code string

// Sentinel codes shared across every form.
const (
	YES            Code = "Yes"
	NO             Code = "No"
	NOT_APPLICABLE Code = "N/A"
	NOT_DONE       Code = "NOT_DONE"
	UNKNOWN        Code = "UNKNOWN"
	OTHER          Code = "OTHER"
	NONE           Code = "none"
)

// Visit tracking and follow-up codes.
const (
	IN_PERSON          Code = "in_person"
	TELEPHONE          Code = "telephone"
	PATIENT            Code = "patient"
	NEXT_OF_KIN        Code = "next_of_kin"
	COLLATERAL_HISTORY Code = "collateral_history"
	HOSPITAL_NOTES     Code = "hospital_notes"
	OUTPATIENT_CARDS   Code = "outpatient_cards"
	SCHEDULED          Code = "scheduled"
	UNSCHEDULED        Code = "unscheduled"
	ALIVE              Code = "alive"
	DEAD               Code = "dead"
)

// Clinical option codes used by multi-select fields.
const (
	HEADACHE                       Code = "headache"
	VISUAL_LOSS                    Code = "visual_loss"
	CN_PALSY_LEFT_OTHER            Code = "cn_palsy_left_other"
	CN_PALSY_RIGHT_OTHER           Code = "cn_palsy_right_other"
	FOCAL_NEUROLOGIC_DEFICIT_OTHER Code = "focal_neurologic_deficit_other"
	NORMAL                         Code = "normal"
	PER_PROTOCOL                   Code = "per_protocol"
	POS                            Code = "POS"
	NEG                            Code = "NEG"
	BACTERIA                       Code = "bacteria"
	BACTERIA_AND_CRYPTOCOCCUS      Code = "bacteria_and_cryptococcus"
)

// ErrorKind tags a validation violation for UI styling and analytics. It does
// not change how a violation propagates.
type ErrorKind string

const (
	REQUIRED_ERROR       ErrorKind = "REQUIRED_ERROR"
	INVALID_ERROR        ErrorKind = "INVALID_ERROR"
	NOT_APPLICABLE_ERROR ErrorKind = "NOT_APPLICABLE_ERROR"
	APPLICABLE_ERROR     ErrorKind = "APPLICABLE_ERROR"
)

// VisitCode identifies a timepoint in the trial's visit schedule.
type VisitCode string

const (
	DAY01  VisitCode = "DAY01"
	DAY03  VisitCode = "DAY03"
	DAY09  VisitCode = "DAY09"
	DAY14  VisitCode = "DAY14"
	WEEK04 VisitCode = "WEEK04"
	WEEK06 VisitCode = "WEEK06"
	WEEK10 VisitCode = "WEEK10"
	WEEK16 VisitCode = "WEEK16"
	WEEK24 VisitCode = "WEEK24"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownForm  = errors.New("unknown form")
	ErrInvalidCode  = errors.New("invalid response code")
	ErrInvalidKind  = errors.New("invalid error kind")
	ErrMissingVisit = errors.New("submission has no visit context")
	ErrNoProvider   = errors.New("context provider not configured")
)

// IsSentinel reports whether the code belongs to the fixed vocabulary shared
// by all forms.
func (c Code) IsSentinel() bool {
	switch c {
	case YES, NO, NOT_APPLICABLE, NOT_DONE, UNKNOWN, OTHER, NONE:
		return true
	default:
		return false
	}
}

// String returns the wire value of the code.
func (c Code) String() string {
	return string(c)
}

// IsValid reports whether k is one of the four violation kinds.
func (k ErrorKind) IsValid() bool {
	switch k {
	case REQUIRED_ERROR, INVALID_ERROR, NOT_APPLICABLE_ERROR, APPLICABLE_ERROR:
		return true
	default:
		return false
	}
}

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	return string(k)
}

// ParseErrorKind converts a string to an ErrorKind.
func ParseErrorKind(s string) (ErrorKind, error) {
	k := ErrorKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
	return k, nil
}

// String returns the string representation of the visit code.
func (v VisitCode) String() string {
	return string(v)
}
