package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

func subjectVisitChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.UNSCHEDULED, "reason", "reason_unscheduled")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("reason_unscheduled")
		}),

		// Assessment
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) && !v.Data().IsEmpty("assessment_type") &&
				!v.Data().Is("assessment_type", domain.IN_PERSON) {
				return formvalidator.RaiseInvalid("assessment_type", "Invalid. Expected 'In person' at baseline")
			}
			return nil
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("assessment_type")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.Required("assessment_who")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("assessment_who")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.Required("info_source")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("info_source")
		}),

		// Survival
		check(func(v *formvalidator.FormValidator) error {
			return validateSubjectVisitSurvivalStatus(p, v)
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.UNKNOWN, "survival_status", "last_alive_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("last_alive_date")
		}),

		// Hospitalisation
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) && v.Data().Is("hospitalized", domain.YES) {
				return formvalidator.RaiseInvalid("hospitalized", "Invalid. Expected NO at baseline")
			}
			return nil
		}),
	}
}

func validateSubjectVisitSurvivalStatus(p Providers, v *formvalidator.FormValidator) error {
	d := v.Data()
	if !d.Is("survival_status", domain.DEAD) {
		return nil
	}
	switch {
	case isBaseline(p, v):
		return formvalidator.RaiseInvalid("survival_status", "Invalid: Cannot be 'Deceased' at baseline")
	case d.Is("assessment_type", domain.IN_PERSON):
		return formvalidator.RaiseInvalid("survival_status",
			"Invalid: Cannot be 'Deceased' if this is an 'In person' visit")
	case d.Is("assessment_who", domain.PATIENT):
		return formvalidator.RaiseInvalid("survival_status",
			"Invalid: Cannot be 'Deceased' if spoke to 'Patient'")
	}
	return nil
}
