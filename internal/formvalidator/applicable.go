package formvalidator

import "github.com/effect-crf-validators/internal/domain"

// ApplicableIf makes fieldApplicable applicable when field holds trigger and
// NOT_APPLICABLE otherwise.
func (v *FormValidator) ApplicableIf(trigger domain.Code, field, fieldApplicable string, opts ...Option) error {
	return v.ApplicableIfTrue(v.data.Is(field, trigger), fieldApplicable, opts...)
}

// ApplicableIfTrue makes fieldApplicable applicable when condition holds:
// it must then carry a substantive answer. When the condition does not hold
// the field must be NOT_APPLICABLE.
func (v *FormValidator) ApplicableIfTrue(condition bool, fieldApplicable string, opts ...Option) error {
	o := newOptions(opts)
	value := v.data.Code(fieldApplicable)
	empty := v.data.IsEmpty(fieldApplicable)

	switch {
	case condition && empty:
		return Raise(domain.REQUIRED_ERROR, map[string]string{fieldApplicable: RequiredMsg})
	case condition && value == domain.NOT_APPLICABLE:
		msg := ApplicableMsg
		if o.applicableMsg != "" {
			msg = o.applicableMsg
		}
		return Raise(domain.APPLICABLE_ERROR, map[string]string{fieldApplicable: msg})
	case !condition && value != domain.NOT_APPLICABLE:
		msg := NotApplicableMsg
		if o.notApplicableMsg != "" {
			msg = o.notApplicableMsg
		}
		return Raise(domain.NOT_APPLICABLE_ERROR, map[string]string{fieldApplicable: msg})
	}
	return nil
}

// NotApplicableIf is the negated form of ApplicableIf: fieldApplicable must
// be NOT_APPLICABLE when field holds trigger, and applicable otherwise.
func (v *FormValidator) NotApplicableIf(trigger domain.Code, field, fieldApplicable string, opts ...Option) error {
	return v.ApplicableIfTrue(!v.data.Is(field, trigger), fieldApplicable, opts...)
}
