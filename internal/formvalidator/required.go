package formvalidator

import "github.com/effect-crf-validators/internal/domain"

// RequiredIf requires fieldRequired when field holds trigger, and requires it
// to be empty otherwise.
func (v *FormValidator) RequiredIf(trigger domain.Code, field, fieldRequired string, opts ...Option) error {
	return v.RequiredIfTrue(v.data.Is(field, trigger), fieldRequired, opts...)
}

// RequiredIfTrue requires fieldRequired when condition holds, and requires it
// to be empty otherwise unless NoInverse is given.
func (v *FormValidator) RequiredIfTrue(condition bool, fieldRequired string, opts ...Option) error {
	o := newOptions(opts)
	answered := v.answered(fieldRequired, o)

	if condition && !answered {
		return Raise(domain.REQUIRED_ERROR, map[string]string{
			fieldRequired: joinMsg(RequiredMsg, o.requiredMsg),
		})
	}
	if !condition && answered && o.inverse {
		return Raise(domain.INVALID_ERROR, map[string]string{
			fieldRequired: NotRequiredMsg,
		})
	}
	return nil
}

// Required requires field unconditionally.
func (v *FormValidator) Required(field string, opts ...Option) error {
	return v.RequiredIfTrue(true, field, opts...)
}

func (v *FormValidator) answered(field string, o *options) bool {
	if o.evaluateAsInt {
		_, ok := v.data.Int(field)
		return ok
	}
	return !v.data.IsEmpty(field)
}
