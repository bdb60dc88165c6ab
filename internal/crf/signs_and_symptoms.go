package crf

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
	"github.com/effect-crf-validators/pkg/duration"
)

// symptomDetailFields pairs a current_sx selection with the field that
// describes it.
var symptomDetailFields = []struct {
	code  domain.Code
	field string
}{
	{domain.HEADACHE, "headache_duration"},
	{domain.CN_PALSY_LEFT_OTHER, "cn_palsy_left_other"},
	{domain.CN_PALSY_RIGHT_OTHER, "cn_palsy_right_other"},
	{domain.FOCAL_NEUROLOGIC_DEFICIT_OTHER, "focal_neurologic_deficit_other"},
	{domain.VISUAL_LOSS, "visual_field_loss"},
}

var investigationFields = []string{"xray_performed", "lp_performed", "urinary_lam_performed"}

func signsAndSymptomsChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(validateAnySxUnknown),
		check(func(v *formvalidator.FormValidator) error {
			return validateSymptomSelections(v, "current_sx", domain.NONE, domain.NOT_APPLICABLE)
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "current_sx", "current_sx_other")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.ApplicableIf(domain.YES, "any_sx", "cm_sx")
		}),
		check(func(v *formvalidator.FormValidator) error {
			return validateSymptomSelections(v, "current_sx_gte_g3", domain.NOT_APPLICABLE)
		}),
		check(validateG3SubsetOfSymptoms),
		check(func(v *formvalidator.FormValidator) error {
			return v.M2MOtherSpecify(domain.OTHER, "current_sx_gte_g3", "current_sx_gte_g3_other")
		}),
		check(validateSymptomDetails),
		check(validateInvestigationsPerformed),
		check(func(v *formvalidator.FormValidator) error {
			return validateSymptomReporting(p, v)
		}),
	}
}

func inPersonVisit(v *formvalidator.FormValidator) bool {
	return v.Visit().AssessmentType == domain.IN_PERSON
}

func validateAnySxUnknown(v *formvalidator.FormValidator) error {
	if !v.Data().Is("any_sx", domain.UNKNOWN) {
		return nil
	}
	switch {
	case inPersonVisit(v):
		return formvalidator.RaiseInvalid("any_sx", fmt.Sprintf(
			"Invalid. Cannot be 'Unknown' if this is an '%s' visit.",
			domain.AssessmentTypes.Display(domain.IN_PERSON)))
	case v.Visit().AssessmentWho == domain.PATIENT:
		return formvalidator.RaiseInvalid("any_sx", fmt.Sprintf(
			"Invalid. Cannot be 'Unknown' if spoke to '%s'.",
			domain.AssessmentWhoChoices.Display(domain.PATIENT)))
	}
	return nil
}

// validateSymptomSelections keeps a symptom multi-select in line with
// any_sx: symptoms reported exclude notExpected, no symptoms means 'none'
// only, and unknown means 'N/A' only. 'none' and 'N/A' are exclusive.
func validateSymptomSelections(v *formvalidator.FormValidator, m2mField string, notExpected ...domain.Code) error {
	var err error
	switch v.Data().Code("any_sx") {
	case domain.YES:
		err = v.M2MSelectionsNotExpected(m2mField, notExpected...)
	case domain.NO:
		err = v.M2MSelectionExpected(domain.NONE, m2mField, fmt.Sprintf("Expected '%s' only.", domain.NONE))
	case domain.UNKNOWN:
		err = v.M2MSelectionExpected(domain.NOT_APPLICABLE, m2mField, fmt.Sprintf("Expected '%s' only.", domain.NOT_APPLICABLE))
	}
	if err != nil {
		return err
	}
	if err := v.M2MSingleSelectionIf(domain.NONE, m2mField); err != nil {
		return err
	}
	return v.M2MSingleSelectionIf(domain.NOT_APPLICABLE, m2mField)
}

// validateG3SubsetOfSymptoms requires grade 3 or above selections to come
// from the symptoms already reported, unless 'none' was selected alone.
func validateG3SubsetOfSymptoms(v *formvalidator.FormValidator) error {
	g3 := v.Data().SelectedCodes("current_sx_gte_g3")
	if len(g3) == 1 && g3[0] == domain.NONE {
		return nil
	}
	for _, code := range g3 {
		if !v.Data().Selected("current_sx", code) {
			return formvalidator.RaiseInvalid("current_sx_gte_g3", fmt.Sprintf(
				"Invalid selection. Must be from above list of signs and symptoms, "+
					"or '%s' if none of the symptoms are Grade 3 or above", domain.NONE))
		}
	}
	return nil
}

func validateSymptomDetails(v *formvalidator.FormValidator) error {
	for _, detail := range symptomDetailFields {
		if err := v.M2MOtherSpecify(detail.code, "current_sx", detail.field); err != nil {
			return err
		}
		if detail.field == "headache_duration" {
			if err := validateHeadacheDuration(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateHeadacheDuration(v *formvalidator.FormValidator) error {
	raw := v.Data().String("headache_duration")
	if v.Data().IsEmpty("headache_duration") {
		return nil
	}
	d, err := duration.Parse(raw)
	if err != nil {
		return formvalidator.RaiseInvalid("headache_duration",
			"Invalid format. Expected a duration in days and/or hours, e.g. 3d, 12h or 1d6h")
	}
	if d.IsZero() {
		return formvalidator.RaiseInvalid("headache_duration", "Invalid. Headache duration cannot be <= 0")
	}
	return nil
}

func validateInvestigationsPerformed(v *formvalidator.FormValidator) error {
	msg := fmt.Sprintf("Invalid. This field is not applicable if this is not an '%s' visit.",
		domain.AssessmentTypes.Display(domain.IN_PERSON))
	for _, field := range investigationFields {
		if err := v.ApplicableIfTrue(inPersonVisit(v), field, formvalidator.WithNotApplicableMessage(msg)); err != nil {
			return err
		}
	}
	return nil
}

func validateSymptomReporting(p Providers, v *formvalidator.FormValidator) error {
	if isBaseline(p, v) {
		for _, field := range reportableFields {
			if !v.Data().Is(field, domain.NOT_APPLICABLE) {
				return formvalidator.Raise(domain.NOT_APPLICABLE_ERROR, map[string]string{
					field: "Not applicable at baseline.",
				})
			}
		}
		return nil
	}

	notReported := formvalidator.WithNotApplicableMessage("Not applicable. No symptoms were reported.")
	if err := v.ApplicableIf(domain.YES, "any_sx", "reportable_as_ae", notReported); err != nil {
		return err
	}

	g3 := v.Data().SelectedCodes("current_sx_gte_g3")
	noneAtG3 := len(g3) == 1 && g3[0] == domain.NONE
	if noneAtG3 && v.Data().Is("reportable_as_ae", domain.YES) {
		return formvalidator.RaiseInvalid("reportable_as_ae",
			"Invalid selection. Expected 'No', if no symptoms at Grade 3 or above were reported.")
	}
	if !noneAtG3 && v.Data().Is("reportable_as_ae", domain.NO) {
		return formvalidator.RaiseInvalid("reportable_as_ae",
			"Invalid selection. Expected 'Yes', if symptoms Grade 3 or above were reported.")
	}

	return v.ApplicableIf(domain.YES, "any_sx", "patient_admitted", notReported)
}
