package crf

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

var reportableFields = []string{"reportable_as_ae", "patient_admitted"}

func vitalSignsChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		check(func(v *formvalidator.FormValidator) error {
			return v.Required("sys_blood_pressure", formvalidator.EvaluateAsInt())
		}),
		check(func(v *formvalidator.FormValidator) error {
			return v.Required("dia_blood_pressure", formvalidator.EvaluateAsInt())
		}),
		check(validateSystolicNotBelowDiastolic),
		check(func(v *formvalidator.FormValidator) error {
			baseline := isBaseline(p, v)
			for _, field := range reportableFields {
				err := v.ApplicableIfTrue(!baseline, field,
					formvalidator.WithNotApplicableMessage("Not applicable at baseline"))
				if err != nil {
					return err
				}
			}
			return nil
		}),
		check(func(v *formvalidator.FormValidator) error {
			return validateVitalsEscalation(p, v)
		}),
	}
}

// validateSystolicNotBelowDiastolic always reports on the diastolic field,
// whichever reading was mistyped.
func validateSystolicNotBelowDiastolic(v *formvalidator.FormValidator) error {
	sys, okSys := v.Data().Int("sys_blood_pressure")
	dia, okDia := v.Data().Int("dia_blood_pressure")
	if okSys && okDia && sys < dia {
		return formvalidator.RaiseInvalid("dia_blood_pressure",
			"Invalid. Diastolic must be less than systolic.")
	}
	return nil
}

func validateVitalsEscalation(p Providers, v *formvalidator.FormValidator) error {
	if isBaseline(p, v) || v.Data().Is("reportable_as_ae", domain.YES) {
		return nil
	}

	sys, okSys := v.Data().Int("sys_blood_pressure")
	dia, okDia := v.Data().Int("dia_blood_pressure")
	if okSys && okDia && p.Vitals.HasSevereHypertension(sys, dia) {
		return formvalidator.RaiseInvalid("reportable_as_ae", fmt.Sprintf(
			"Invalid. Expected YES. Participant has severe hypertension (BP reading >= %d/%dmmHg).",
			p.Vitals.SysUpper(), p.Vitals.DiaUpper(),
		))
	}

	if temperature, ok := v.Data().Float("temperature"); ok {
		if p.Vitals.HasG3Fever(temperature) || p.Vitals.HasG4Fever(temperature) {
			return formvalidator.RaiseInvalid("reportable_as_ae", fmt.Sprintf(
				"Invalid. Expected YES. Participant has G3 or higher fever (temperature >= %v).",
				p.Vitals.G3FeverLower(),
			))
		}
	}
	return nil
}
