package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

const beforeHivDxMsg = "Invalid. Cannot be before 'HIV diagnosis first known' date"

func arvHistoryChecks(_ Providers) []formvalidator.Check {
	return []formvalidator.Check{
		// HIV diagnosis
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("hiv_dx_date")
		}),

		// Initial ART
		check(func(v *formvalidator.FormValidator) error {
			d := v.Data()
			everOnArt := !d.IsEmpty("on_art_at_crag") && !d.IsEmpty("ever_on_art") &&
				(d.Is("on_art_at_crag", domain.YES) || d.Is("ever_on_art", domain.YES))
			return v.RequiredIfTrue(everOnArt, "initial_art_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("initial_art_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIfTrue(!v.Data().IsEmpty("initial_art_date"), "initial_art_date_estimated")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MApplicableIfTrue(!v.Data().IsEmpty("initial_art_date"), "initial_art_regimen")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "initial_art_regimen", "initial_art_regimen_other")
		}),

		// Regimen switch
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIfTrue(!v.Data().IsEmpty("initial_art_date"), "has_switched_art_regimen")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "has_switched_art_regimen", "current_art_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotBefore("initial_art_date", "current_art_date",
				"Invalid. Cannot be before ART start date", formvalidator.OnField("current_art_date"))
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotEqual("current_art_date", "initial_art_date",
				"Invalid. Cannot be equal to the ART start date", formvalidator.OnField("current_art_date"))
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("current_art_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "has_switched_art_regimen", "current_art_date_estimated")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MApplicableIfTrue(!v.Data().IsEmpty("current_art_date"), "current_art_regimen")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "current_art_regimen", "current_art_regimen_other")
		}),

		// Defaulted
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotBefore("current_art_date", "defaulted_date",
				"Invalid. Cannot be before current ART start date", formvalidator.OnField("defaulted_date"))
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotEqual("current_art_date", "defaulted_date",
				"Invalid. Cannot be equal to the current ART start date", formvalidator.OnField("defaulted_date"))
		}),

		// Adherence
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "has_switched_art_regimen", "is_adherent")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.NO, "is_adherent", "art_doses_missed", formvalidator.EvaluateAsInt())
		}),

		// Viral load
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "has_viral_load_result", "viral_load_result", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "has_viral_load_result", "viral_load_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "has_viral_load_result", "viral_load_date_estimated")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("viral_load_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotBefore("hiv_dx_date", "viral_load_date", beforeHivDxMsg)
		}),

		// CD4
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "has_cd4_result", "cd4_result", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "has_cd4_result", "cd4_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "has_cd4_result", "cd4_date_estimated")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("cd4_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.DateNotBefore("hiv_dx_date", "cd4_date", beforeHivDxMsg)
		}),
	}
}
