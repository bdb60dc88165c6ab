package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

var modifiedDrugFields = []string{"flucon_modified", "flucyt_modified"}

func studyMedicationFollowupChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) {
				return formvalidator.Raise(domain.INVALID_ERROR, map[string]string{
					domain.AllFields: "This form may not be completed at baseline",
				})
			}
			return nil
		}),

		// Modifications
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "modifications", "modifications_reason")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MSingleSelectionIf(domain.PER_PROTOCOL, "modifications_reason")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "modifications_reason", "modifications_reason_other")
		}),
		check(validateModifiedDrugs),

		// Fluconazole
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucon_modified", "flucon_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucon_modified", "flucon_dose", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return notesNotRequiredIfNotApplicable(v, "flucon_modified", "flucon_notes")
		}),

		// Flucytosine
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucyt_modified", "flucyt_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucyt_modified", "flucyt_dose_rx", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return requiredForEachDose(v, domain.YES, "flucyt_modified")
		}),
		check(validateFlucytDoseSum),
		check(func(v *formvalidator.FormValidator) error {
			return notesNotRequiredIfNotApplicable(v, "flucyt_modified", "flucyt_notes")
		}),
	}
}

// validateModifiedDrugs keeps the per-drug answers in line with the
// modifications question: NOT_APPLICABLE when nothing was modified, and at
// least one drug modified otherwise. A drug section may still be
// NOT_APPLICABLE when only the other drug changed.
func validateModifiedDrugs(v *formvalidator.FormValidator) error {
	if !v.Data().Is("modifications", domain.YES) {
		for _, field := range modifiedDrugFields {
			if !v.Data().Is(field, domain.NOT_APPLICABLE) {
				return formvalidator.RaiseNotApplicable(field, "")
			}
		}
		return nil
	}

	for _, field := range modifiedDrugFields {
		if v.Data().IsEmpty(field) {
			return formvalidator.Raise(domain.REQUIRED_ERROR, map[string]string{field: formvalidator.RequiredMsg})
		}
	}
	if !v.Data().Is("flucon_modified", domain.YES) && !v.Data().Is("flucyt_modified", domain.YES) {
		return formvalidator.RaiseFields(domain.INVALID_ERROR,
			"Invalid. Expected at least one modification in 'Fluconazole' or 'Flucytosine' section.",
			modifiedDrugFields...)
	}
	return nil
}

func notesNotRequiredIfNotApplicable(v *formvalidator.FormValidator, modifiedField, notesField string) error {
	if v.Data().Is(modifiedField, domain.NOT_APPLICABLE) {
		return v.RequiredIfTrue(false, notesField)
	}
	return nil
}
