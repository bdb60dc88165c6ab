package formvalidator

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
)

// M2MSelectionExpected requires code to be among the selections of
// m2mField, raising msg otherwise.
func (v *FormValidator) M2MSelectionExpected(code domain.Code, m2mField, msg string) error {
	if !v.data.Selected(m2mField, code) {
		if msg == "" {
			msg = fmt.Sprintf("Invalid selection. Expected '%s'.", code)
		}
		return RaiseInvalid(m2mField, msg)
	}
	return nil
}

// M2MSelectionsNotExpected rejects any of codes among the selections of
// m2mField.
func (v *FormValidator) M2MSelectionsNotExpected(m2mField string, codes ...domain.Code) error {
	for _, selection := range v.data.Selections(m2mField) {
		for _, code := range codes {
			if selection.Name == code {
				return RaiseInvalid(m2mField, fmt.Sprintf("Invalid selection. Cannot be '%s'.", selection.DisplayName))
			}
		}
	}
	return nil
}

// M2MSingleSelectionIf requires code, when selected, to be the only
// selection of m2mField.
func (v *FormValidator) M2MSingleSelectionIf(code domain.Code, m2mField string) error {
	selections := v.data.Selections(m2mField)
	if len(selections) < 2 {
		return nil
	}
	for _, selection := range selections {
		if selection.Name == code {
			return RaiseInvalid(m2mField, fmt.Sprintf(
				"Invalid combination. '%s' may not be combined with other selections",
				selection.DisplayName,
			))
		}
	}
	return nil
}

// M2MApplicableIfTrue makes a multi-select applicable when condition holds:
// it must then have selections other than NOT_APPLICABLE. When the
// condition does not hold, any selections must be NOT_APPLICABLE alone.
func (v *FormValidator) M2MApplicableIfTrue(condition bool, m2mField string, opts ...Option) error {
	o := newOptions(opts)
	codes := v.data.SelectedCodes(m2mField)
	hasNA := v.data.Selected(m2mField, domain.NOT_APPLICABLE)

	switch {
	case condition && len(codes) == 0:
		return Raise(domain.REQUIRED_ERROR, map[string]string{m2mField: RequiredMsg})
	case condition && hasNA:
		msg := ApplicableMsg
		if o.applicableMsg != "" {
			msg = o.applicableMsg
		}
		return Raise(domain.APPLICABLE_ERROR, map[string]string{m2mField: msg})
	case !condition && len(codes) > 0 && !(len(codes) == 1 && hasNA):
		msg := NotApplicableMsg
		if o.notApplicableMsg != "" {
			msg = o.notApplicableMsg
		}
		return Raise(domain.NOT_APPLICABLE_ERROR, map[string]string{m2mField: msg})
	}
	return nil
}
