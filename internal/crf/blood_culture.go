package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

func bloodCultureChecks(_ Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "blood_culture_performed", "date_blood_taken")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("date_blood_taken")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "blood_culture_performed", "blood_culture_result")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.POS, "blood_culture_result", "date_culture_positive")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotBefore("date_blood_taken", "date_culture_positive",
				"Invalid. Cannot be before date blood was taken")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("date_culture_positive")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.POS, "blood_culture_result", "blood_culture_organism")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("blood_culture_organism")
		}),
		check(func(v *formvalidator.FormValidator) error {
			d := v.Data()
			bacteria := d.Is("blood_culture_organism", domain.BACTERIA) ||
				d.Is("blood_culture_organism", domain.BACTERIA_AND_CRYPTOCOCCUS)
			return v.ApplicableIfTrue(bacteria, "blood_culture_bacteria")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("blood_culture_bacteria")
		}),
	}
}
