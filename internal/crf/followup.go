package crf

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

// assessment is one follow-up (assessment_type, info_source) pair.
type assessment struct {
	assessmentType domain.Code
	infoSource     domain.Code
}

// infoSourceAssessments lists, for each main source of information recorded
// on the subject visit, the follow-up assessments it reconciles with.
var infoSourceAssessments = map[domain.Code][]assessment{
	domain.PATIENT: {
		{domain.IN_PERSON, domain.NOT_APPLICABLE},
		{domain.TELEPHONE, domain.PATIENT},
	},
	domain.COLLATERAL_HISTORY: {
		{domain.TELEPHONE, domain.NEXT_OF_KIN},
		{domain.TELEPHONE, domain.OTHER},
		{domain.OTHER, domain.NOT_APPLICABLE},
	},
	domain.HOSPITAL_NOTES:   {{domain.OTHER, domain.NOT_APPLICABLE}},
	domain.OUTPATIENT_CARDS: {{domain.OTHER, domain.NOT_APPLICABLE}},
	domain.OTHER:            {{domain.OTHER, domain.NOT_APPLICABLE}},
}

// InfoSourceReconciles reports whether a follow-up assessment is compatible
// with the subject visit's main source of information.
func InfoSourceReconciles(svInfoSource, fuAssessmentType, fuInfoSource domain.Code) bool {
	for _, a := range infoSourceAssessments[svInfoSource] {
		if a.assessmentType == fuAssessmentType && a.infoSource == fuInfoSource {
			return true
		}
	}
	return false
}

func followupChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) && v.Data().Is("assessment_type", domain.TELEPHONE) {
				return formvalidator.RaiseInvalid("assessment_type", "Invalid. Expected 'In person' at baseline")
			}
			return nil
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("assessment_type")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.TELEPHONE, "assessment_type", "info_source")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateOtherSpecify("info_source")
		}),
		check(validateAgainstSubjectVisitInfoSource),
		check(func(v *formvalidator.FormValidator) error {
			return validateFollowupSurvivalStatus(p, v)
		}),
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) && v.Data().Is("hospitalized", domain.YES) {
				return formvalidator.RaiseInvalid("hospitalized", "Invalid. Expected NO at baseline")
			}
			return nil
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.NotApplicableIf(domain.DEAD, "survival_status", "adherence_counselling",
				formvalidator.WithNotApplicableMessage("Invalid: Expected 'Not applicable' if survival status is 'Deceased'"))
		}),
	}
}

func validateAgainstSubjectVisitInfoSource(v *formvalidator.FormValidator) error {
	svInfoSource := v.Visit().InfoSource
	fuAssessmentType := v.Data().Code("assessment_type")
	fuInfoSource := v.Data().Code("info_source")

	if InfoSourceReconciles(svInfoSource, fuAssessmentType, fuInfoSource) {
		return nil
	}

	msg := fmt.Sprintf(
		"Invalid. Did not expect '%s' assessment with '%s', since the main source of "+
			"information provided in the Subject Visit was '%s'.",
		domain.AssessmentTypes.Display(fuAssessmentType),
		domain.AssessmentWhoChoices.Display(fuInfoSource),
		domain.VisitInfoSources.Display(svInfoSource),
	)
	return formvalidator.RaiseFields(domain.INVALID_ERROR, msg, "assessment_type", "info_source")
}

func validateFollowupSurvivalStatus(p Providers, v *formvalidator.FormValidator) error {
	d := v.Data()
	if !d.Is("survival_status", domain.DEAD) {
		return nil
	}
	switch {
	case d.Is("assessment_type", domain.IN_PERSON):
		return formvalidator.RaiseInvalid("survival_status",
			"Invalid: Cannot be 'Deceased' if this is an 'In person' visit")
	case isBaseline(p, v):
		return formvalidator.RaiseInvalid("survival_status", "Invalid: Cannot be 'Deceased' at baseline")
	case d.Is("assessment_type", domain.TELEPHONE) && d.Is("info_source", domain.PATIENT):
		return formvalidator.RaiseInvalid("survival_status",
			"Invalid: Unexpected survival status 'Deceased' if 'Telephone' visit with 'Patient'")
	}
	return nil
}
