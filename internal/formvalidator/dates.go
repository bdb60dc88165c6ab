package formvalidator

import (
	"time"

	"github.com/effect-crf-validators/internal/domain"
)

// Report datetime messages.
const (
	OnOrBeforeReportMsg = "Invalid. Must be on or before report date/time."
	BeforeReportMsg     = "Invalid. Must be before report date/time."
)

// DateNotBefore raises msg when fieldB is earlier than fieldA. The error is
// attached to fieldB unless OnField says otherwise. Missing values pass.
func (v *FormValidator) DateNotBefore(fieldA, fieldB, msg string, opts ...Option) error {
	a, b, ok := v.datePair(fieldA, fieldB)
	if ok && b.Before(a) {
		return RaiseInvalid(target(fieldB, opts), msg)
	}
	return nil
}

// DateNotEqual raises msg when both dates are present and equal.
func (v *FormValidator) DateNotEqual(fieldA, fieldB, msg string, opts ...Option) error {
	a, b, ok := v.datePair(fieldA, fieldB)
	if ok && a.Equal(b) {
		return RaiseInvalid(target(fieldB, opts), msg)
	}
	return nil
}

// DateEqual raises msg when both dates are present and differ.
func (v *FormValidator) DateEqual(fieldA, fieldB, msg string, opts ...Option) error {
	a, b, ok := v.datePair(fieldA, fieldB)
	if ok && !a.Equal(b) {
		return RaiseInvalid(target(fieldB, opts), msg)
	}
	return nil
}

// DateBeforeReportDatetime requires field to be on or before the form's
// report datetime, or strictly before it with Exclusive. Date-only values
// are compared against the report's calendar date.
func (v *FormValidator) DateBeforeReportDatetime(field string, opts ...Option) error {
	o := newOptions(opts)
	value, ok := v.data.DateTime(field)
	if !ok {
		return nil
	}
	reportDatetime, ok := v.ReportDatetime()
	if !ok {
		return nil
	}

	if v.isDateValue(field, value) {
		value = domain.DateOf(value)
		reportDatetime = domain.DateOf(reportDatetime)
	}

	violated := value.After(reportDatetime)
	msg := OnOrBeforeReportMsg
	if o.exclusive {
		violated = !value.Before(reportDatetime)
		msg = BeforeReportMsg
	}
	if violated {
		return RaiseInvalid(field, msg)
	}
	return nil
}

// ValidateDateAgainstReportDatetime is the inclusive report datetime check.
func (v *FormValidator) ValidateDateAgainstReportDatetime(field string) error {
	return v.DateBeforeReportDatetime(field)
}

func (v *FormValidator) datePair(fieldA, fieldB string) (time.Time, time.Time, bool) {
	a, okA := v.data.Date(fieldA)
	b, okB := v.data.Date(fieldB)
	return a, b, okA && okB
}

func (v *FormValidator) isDateValue(field string, value time.Time) bool {
	if v.data.IsDateOnly(field) {
		return true
	}
	if _, isTime := v.data.Get(field).(time.Time); isTime {
		h, m, s := value.Clock()
		return h == 0 && m == 0 && s == 0 && value.Nanosecond() == 0
	}
	return false
}

func target(defaultField string, opts []Option) string {
	o := newOptions(opts)
	if o.messageOnField != "" {
		return o.messageOnField
	}
	return defaultField
}
