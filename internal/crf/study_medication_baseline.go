package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

func studyMedicationBaselineChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			if !isBaseline(p, v) {
				return formvalidator.Raise(domain.INVALID_ERROR, map[string]string{
					domain.AllFields: "This form may only be completed at baseline",
				})
			}
			return nil
		}),

		// Fluconazole
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.NO, "flucon_initiated", "flucon_not_initiated_reason")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucon_initiated", "flucon_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return validateDoseDateIsReportDate(v, "flucon_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucon_initiated", "flucon_dose_rx", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			rx, ok := v.Data().Int("flucon_dose_rx")
			return v.RequiredIfTrue(ok && rx != expectedFluconDose, "flucon_notes",
				formvalidator.WithRequiredMessage("Fluconazole dose not 1200 mg/d."),
				formvalidator.NoInverse())
		}),

		// Flucytosine
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.NO, "flucyt_initiated", "flucyt_not_initiated_reason")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucyt_initiated", "flucyt_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return validateDoseDateIsReportDate(v, "flucyt_dose_datetime")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucyt_initiated", "flucyt_dose_rx", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return requiredForEachDose(v, domain.YES, "flucyt_initiated")
		}),
		check(validateFlucytDoseSum),
		check(func(v *formvalidator.FormValidator) error {
			expected, okExpected := v.Data().Int("flucyt_dose_expected")
			rx, okRx := v.Data().Int("flucyt_dose_rx")
			return v.RequiredIfTrue(okExpected && okRx && expected != rx, "flucyt_notes",
				formvalidator.WithRequiredMessage("Flucytosine expected and prescribed doses differ."),
				formvalidator.NoInverse())
		}),
	}
}
