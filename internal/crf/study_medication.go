package crf

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

// flucytDoseFields are the four daily flucytosine dose slots.
var flucytDoseFields = []string{
	"flucyt_dose_0400",
	"flucyt_dose_1000",
	"flucyt_dose_1600",
	"flucyt_dose_2200",
}

// expectedFluconDose is the protocol induction dose in mg/d.
const expectedFluconDose = 1200

// validateDoseDateIsReportDate requires a dose datetime to fall on the
// report date.
func validateDoseDateIsReportDate(v *formvalidator.FormValidator, field string) error {
	reportDatetime, ok := v.ReportDatetime()
	if !ok {
		return nil
	}
	doseDate, ok := v.Data().Date(field)
	if !ok {
		return nil
	}
	reportDate := domain.DateOf(reportDatetime)
	if !doseDate.Equal(reportDate) {
		return formvalidator.RaiseInvalid(field, "Expected "+domain.FormatDate(reportDate))
	}
	return nil
}

// validateFlucytDoseSum requires the individual dose slots to add up to the
// prescribed daily dose. Missing slots count as zero.
func validateFlucytDoseSum(v *formvalidator.FormValidator) error {
	rx, ok := v.Data().Int("flucyt_dose_rx")
	if !ok {
		return nil
	}
	sum := 0
	for _, field := range flucytDoseFields {
		if dose, ok := v.Data().Int(field); ok {
			sum += dose
		}
	}
	if sum != rx {
		return formvalidator.RaiseFields(domain.INVALID_ERROR, fmt.Sprintf(
			"Invalid. Expected sum of individual doses to match prescribed flucytosine dose (%d mg/d).", rx,
		), flucytDoseFields...)
	}
	return nil
}

// requiredForEachDose applies RequiredIf with integer semantics to every
// flucytosine dose slot.
func requiredForEachDose(v *formvalidator.FormValidator, trigger domain.Code, field string) error {
	for _, doseField := range flucytDoseFields {
		if err := v.RequiredIf(trigger, field, doseField, formvalidator.EvaluateAsInt()); err != nil {
			return err
		}
	}
	return nil
}
