package crf

import (
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

// signsAndSymptomsForm is the related form carrying the investigations
// answered at the same visit.
const signsAndSymptomsForm = "signs_and_symptoms"

func chestXrayChecks(_ Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(validateChestXrayAgainstSignsAndSymptoms),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "chest_xray", "chest_xray_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ValidateDateAgainstReportDatetime("chest_xray_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.RequiredIf(domain.YES, "chest_xray", "chest_xray_results")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MSingleSelectionIf(domain.NORMAL, "chest_xray_results")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "chest_xray_results", "chest_xray_results_other")
		}),
	}
}

// validateChestXrayAgainstSignsAndSymptoms requires chest_xray to agree with
// the xray_performed answer on the same visit's signs and symptoms form. The
// check is skipped when the caller did not attach that form.
func validateChestXrayAgainstSignsAndSymptoms(v *formvalidator.FormValidator) error {
	related, ok := v.Submission().RelatedForm(signsAndSymptomsForm)
	if !ok || related.IsEmpty("xray_performed") {
		return nil
	}

	performed := related.Is("xray_performed", domain.YES)
	switch {
	case performed && !v.Data().Is("chest_xray", domain.YES):
		return formvalidator.RaiseInvalid("chest_xray",
			"Invalid. X-ray was reported as performed on the Signs and Symptoms form.")
	case !performed && v.Data().Is("chest_xray", domain.YES):
		return formvalidator.RaiseInvalid("chest_xray",
			"Invalid. X-ray was not reported as performed on the Signs and Symptoms form.")
	}
	return nil
}
