package formvalidator

import "github.com/effect-crf-validators/internal/domain"

type options struct {
	requiredMsg      string
	applicableMsg    string
	notApplicableMsg string
	messageOnField   string
	otherField       string
	otherValue       domain.Code
	inverse          bool
	evaluateAsInt    bool
	exclusive        bool
}

// Option tunes a rule primitive.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		otherValue: domain.OTHER,
		inverse:    true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRequiredMessage appends msg to "This field is required.".
func WithRequiredMessage(msg string) Option {
	return func(o *options) { o.requiredMsg = msg }
}

// WithApplicableMessage replaces "This field is applicable.".
func WithApplicableMessage(msg string) Option {
	return func(o *options) { o.applicableMsg = msg }
}

// WithNotApplicableMessage replaces "This field is not applicable.".
func WithNotApplicableMessage(msg string) Option {
	return func(o *options) { o.notApplicableMsg = msg }
}

// OnField attaches a date ordering violation to field instead of the second
// field of the comparison.
func OnField(field string) Option {
	return func(o *options) { o.messageOnField = field }
}

// WithOtherField names the free-text field paired with an other-specify
// choice. The default is "<field>_other".
func WithOtherField(field string) Option {
	return func(o *options) { o.otherField = field }
}

// WithOtherValue sets the response that triggers the other-specify field.
// The default is OTHER.
func WithOtherValue(code domain.Code) Option {
	return func(o *options) { o.otherValue = code }
}

// NoInverse skips the "not required" leg of a requiredness rule.
func NoInverse() Option {
	return func(o *options) { o.inverse = false }
}

// EvaluateAsInt treats the required field as an integer: any whole number,
// zero included, is an answer.
func EvaluateAsInt() Option {
	return func(o *options) { o.evaluateAsInt = true }
}

// Exclusive makes a comparison against the report datetime strict.
func Exclusive() Option {
	return func(o *options) { o.exclusive = true }
}
