package crf

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

var (
	mentalStatusSymptoms = []string{"recent_seizure", "behaviour_change", "confusion"}
	functionalQuestions  = []string{"require_help", "any_other_problems"}

	// functionalVisits are the scheduled timepoints at which participants are
	// asked the functional status questions.
	functionalVisits = []domain.VisitCode{domain.WEEK10, domain.WEEK24}
)

const normalGCS = 15

func mentalStatusChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			if isBaseline(p, v) {
				return validateMentalStatusAtBaseline(v)
			}
			return nil
		}),
		check(func(v *formvalidator.FormValidator) error {
			return validateFunctionalQuestions(p, v)
		}),
		check(validateFunctionalScores),
		check(func(v *formvalidator.FormValidator) error {
			return validateMentalStatusReporting(p, v)
		}),
	}
}

func rankinAbnormal(d domain.FieldStore) bool {
	score := d.Code("modified_rankin_score")
	return score != "0" && score != domain.NOT_DONE
}

func ecogAbnormal(d domain.FieldStore) bool {
	return d.Code("ecog_score") != "0"
}

func gcsAbnormal(d domain.FieldStore) bool {
	gcs, ok := d.Int("glasgow_coma_score")
	return ok && gcs < normalGCS
}

func validateMentalStatusAtBaseline(v *formvalidator.FormValidator) error {
	d := v.Data()
	for _, sx := range mentalStatusSymptoms {
		if d.Is(sx, domain.YES) {
			return formvalidator.RaiseInvalid(sx, "Invalid. Cannot report positive symptoms at baseline.")
		}
	}

	switch {
	case rankinAbnormal(d):
		return formvalidator.RaiseInvalid("modified_rankin_score", "Invalid. Modified Rankin cannot be > 0 at baseline.")
	case ecogAbnormal(d):
		return formvalidator.RaiseInvalid("ecog_score", "Invalid. ECOG cannot be > 0 at baseline.")
	case gcsAbnormal(d):
		return formvalidator.RaiseInvalid("glasgow_coma_score", "Invalid. GCS cannot be < 15 at baseline.")
	}
	return nil
}

func isFunctionalVisit(v *formvalidator.FormValidator) bool {
	if !v.HasVisit() || !v.Visit().IsScheduled() {
		return false
	}
	for _, code := range functionalVisits {
		if v.Visit().VisitCode == code {
			return true
		}
	}
	return false
}

func validateFunctionalQuestions(p Providers, v *formvalidator.FormValidator) error {
	msg := fmt.Sprintf("This field is only applicable at scheduled %s and %s visits.",
		p.Schedule.Title(domain.WEEK10), p.Schedule.Title(domain.WEEK24))
	for _, field := range functionalQuestions {
		if err := v.ApplicableIfTrue(isFunctionalVisit(v), field, formvalidator.WithNotApplicableMessage(msg)); err != nil {
			return err
		}
	}
	return nil
}

// validateFunctionalScores reconciles the functional status answers with the
// mRS and ECOG scores. Both scores are checked and reported together.
func validateFunctionalScores(v *formvalidator.FormValidator) error {
	d := v.Data()
	needsHelp := d.Is("require_help", domain.YES) || d.Is("any_other_problems", domain.YES)
	noHelp := d.Is("require_help", domain.NO) && d.Is("any_other_problems", domain.NO)

	errs := domain.NewFormError(domain.INVALID_ERROR, nil)
	switch {
	case needsHelp:
		if d.Code("modified_rankin_score") == "0" {
			errs.Add("modified_rankin_score",
				"Invalid. Expected to be > '0' or 'Not done' if participant requires help or has any other problems.",
				domain.INVALID_ERROR)
		}
		if d.Code("ecog_score") == "0" {
			errs.Add("ecog_score",
				"Invalid. Expected to be > '0' if participant requires help or has any other problems.",
				domain.INVALID_ERROR)
		}
	case noHelp:
		if rankinAbnormal(d) {
			errs.Add("modified_rankin_score",
				"Invalid. Expected to be '0' or 'Not done' if participant does not require help or have any other problems.",
				domain.INVALID_ERROR)
		}
		if ecogAbnormal(d) {
			errs.Add("ecog_score",
				"Invalid. Expected to be '0' if participant does not require help or have any other problems.",
				domain.INVALID_ERROR)
		}
	}

	if len(errs.Messages) > 0 {
		return errs
	}
	return nil
}

// symptomReason returns why the reporting fieldset is applicable, or "" when
// no symptom was reported.
func symptomReason(d domain.FieldStore) string {
	switch {
	case d.Is("recent_seizure", domain.YES):
		return "A recent seizure was reported."
	case d.Is("behaviour_change", domain.YES):
		return "Behaviour change was reported."
	case d.Is("confusion", domain.YES):
		return "Confusion reported."
	case d.Is("require_help", domain.YES):
		return "Participant requires help."
	case d.Is("any_other_problems", domain.YES):
		return "Participant has other problems."
	case rankinAbnormal(d):
		return "Modified Rankin Score > 0."
	case ecogAbnormal(d):
		return "ECOG score > 0."
	case gcsAbnormal(d):
		return "GCS < 15."
	}
	return ""
}

// symptomFree reports a fully normal assessment. A missing GCS is not
// normal, so a blank GCS never forces the reporting fieldset to N/A.
func symptomFree(d domain.FieldStore) bool {
	for _, sx := range mentalStatusSymptoms {
		if !d.Is(sx, domain.NO) {
			return false
		}
	}
	for _, q := range functionalQuestions {
		if d.Is(q, domain.YES) {
			return false
		}
	}
	gcs, ok := d.Int("glasgow_coma_score")
	return !rankinAbnormal(d) && !ecogAbnormal(d) && ok && gcs == normalGCS
}

func validateMentalStatusReporting(p Providers, v *formvalidator.FormValidator) error {
	d := v.Data()
	baseline := isBaseline(p, v)

	for _, field := range reportableFields {
		switch {
		case baseline:
			if !d.Is(field, domain.NOT_APPLICABLE) {
				return formvalidator.Raise(domain.NOT_APPLICABLE_ERROR, map[string]string{
					field: "Not applicable at baseline.",
				})
			}
		case d.Is(field, domain.YES) || d.Is(field, domain.NO):
			if symptomFree(d) {
				return formvalidator.RaiseNotApplicable(field, "No symptoms were reported.")
			}
		case d.Is(field, domain.NOT_APPLICABLE):
			if reason := symptomReason(d); reason != "" {
				return formvalidator.RaiseApplicable(field, reason)
			}
		case d.IsEmpty(field):
			if symptomReason(d) != "" {
				return formvalidator.Raise(domain.REQUIRED_ERROR, map[string]string{
					field: formvalidator.RequiredMsg,
				})
			}
			if symptomFree(d) {
				return formvalidator.RaiseNotApplicable(field, "No symptoms were reported.")
			}
		}
	}
	return nil
}
