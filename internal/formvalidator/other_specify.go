package formvalidator

import "github.com/effect-crf-validators/internal/domain"

// ValidateOtherSpecify requires the free-text field paired with field when
// field holds OTHER (or the WithOtherValue response), and requires it to be
// empty otherwise.
func (v *FormValidator) ValidateOtherSpecify(field string, opts ...Option) error {
	o := newOptions(opts)
	otherField := o.otherField
	if otherField == "" {
		otherField = field + "_other"
	}
	return v.otherSpecify(v.data.Is(field, o.otherValue), otherField, o)
}

// M2MOtherSpecify requires fieldOther when trigger is among the selections
// of m2mField, and requires it to be empty otherwise.
func (v *FormValidator) M2MOtherSpecify(trigger domain.Code, m2mField, fieldOther string, opts ...Option) error {
	o := newOptions(opts)
	return v.otherSpecify(v.data.Selected(m2mField, trigger), fieldOther, o)
}

func (v *FormValidator) otherSpecify(condition bool, otherField string, o *options) error {
	answered := !v.data.IsEmpty(otherField)
	if condition && !answered {
		return Raise(domain.REQUIRED_ERROR, map[string]string{
			otherField: joinMsg(RequiredMsg, o.requiredMsg),
		})
	}
	if !condition && answered {
		return Raise(domain.INVALID_ERROR, map[string]string{
			otherField: NotRequiredMsg,
		})
	}
	return nil
}
