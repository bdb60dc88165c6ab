package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

func patientHistoryChecks(_ Providers) []formvalidator.Check {
	return []formvalidator.Check{
		// Fluconazole in the week before randomisation
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "flucon_1w_prior_rando", "flucon_days", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "flucon_1w_prior_rando", "flucon_dose")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("flucon_dose")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.OTHER, "flucon_dose", "flucon_dose_other_reason")
		}),

		// TB
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "tb_prev_dx", "tb_site")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "tb_prev_dx", "on_tb_tx")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.NO, "on_tb_tx", "tb_dx_ago")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "on_tb_tx", "on_rifampicin")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "on_rifampicin", "rifampicin_start_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("rifampicin_start_date")
		}),
	}
}
