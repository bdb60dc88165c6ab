package crf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

func studyMedicationFollowupFields(overrides map[string]any) map[string]any {
	return merge(map[string]any{
		"modifications":              domain.YES,
		"modifications_reason":       choices(domain.PER_PROTOCOL),
		"modifications_reason_other": "",
		"flucon_modified":            domain.YES,
		"flucon_dose_datetime":       "2024-03-14T10:31:00Z",
		"flucon_dose":                800,
		"flucon_notes":               "",
		"flucyt_modified":            domain.YES,
		"flucyt_dose_datetime":       "2024-03-14T10:31:00Z",
		"flucyt_dose_rx":             0,
		"flucyt_dose_0400":           0,
		"flucyt_dose_1000":           0,
		"flucyt_dose_1600":           0,
		"flucyt_dose_2200":           0,
		"flucyt_notes":               "",
	}, overrides)
}

func validateFollowupMedication(t *testing.T, overrides map[string]any) error {
	t.Helper()
	r := newTestRegistry(t)
	return validate(t, r, newSubmission("study_medication_followup", followupVisit(domain.DAY03, 0), studyMedicationFollowupFields(overrides)))
}

func TestStudyMedicationFollowup_Valid(t *testing.T) {
	r := newTestRegistry(t)
	for _, code := range []domain.VisitCode{domain.DAY03, domain.DAY14, domain.WEEK10} {
		err := validate(t, r, newSubmission("study_medication_followup", followupVisit(code, 0), studyMedicationFollowupFields(nil)))
		assert.NoError(t, err, "visit %s", code)
	}
	err := validate(t, r, newSubmission("study_medication_followup", followupVisit(domain.DAY01, 1), studyMedicationFollowupFields(nil)))
	assert.NoError(t, err)
}

func TestStudyMedicationFollowup_NotAtBaseline(t *testing.T) {
	r := newTestRegistry(t)

	err := validate(t, r, newSubmission("study_medication_followup", baselineVisit(), studyMedicationFollowupFields(nil)))
	assertFieldError(t, err, domain.INVALID_ERROR, domain.AllFields, "This form may not be completed at baseline")
}

func TestStudyMedicationFollowup_ModificationReasons(t *testing.T) {
	err := validateFollowupMedication(t, map[string]any{"modifications_reason": nil})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "modifications_reason", "This field is required")

	err = validateFollowupMedication(t, map[string]any{"modifications": domain.NO})
	assertFieldError(t, err, domain.INVALID_ERROR, "modifications_reason", "This field is not required")

	err = validateFollowupMedication(t, map[string]any{
		"modifications_reason": choices(domain.PER_PROTOCOL, "toxicity"),
	})
	assertFieldError(t, err, domain.INVALID_ERROR, "modifications_reason",
		"Invalid combination. 'per_protocol' may not be combined with other selections")

	err = validateFollowupMedication(t, map[string]any{
		"modifications_reason": choices("renal_adjustment", "toxicity"),
	})
	assert.NoError(t, err)

	err = validateFollowupMedication(t, map[string]any{
		"modifications_reason": choices("toxicity", domain.OTHER),
	})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "modifications_reason_other", "This field is required.")

	err = validateFollowupMedication(t, map[string]any{"modifications_reason_other": "Patient request"})
	assertFieldError(t, err, domain.INVALID_ERROR, "modifications_reason_other", "This field is not required.")
}

func TestStudyMedicationFollowup_AtLeastOneModification(t *testing.T) {
	for _, flucon := range []domain.Code{domain.NO, domain.NOT_APPLICABLE} {
		for _, flucyt := range []domain.Code{domain.NO, domain.NOT_APPLICABLE} {
			t.Run(string(flucon)+"_"+string(flucyt), func(t *testing.T) {
				err := validateFollowupMedication(t, map[string]any{
					"flucon_modified": flucon,
					"flucyt_modified": flucyt,
				})
				fe, ok := formvalidator.AsFormError(err)
				require.True(t, ok)
				msg := "Invalid. Expected at least one modification in 'Fluconazole' or 'Flucytosine' section."
				assert.Equal(t, msg, fe.Message("flucon_modified"))
				assert.Equal(t, msg, fe.Message("flucyt_modified"))
			})
		}
	}
}

func TestStudyMedicationFollowup_SingleDrugModified(t *testing.T) {
	err := validateFollowupMedication(t, map[string]any{
		"flucyt_modified":      domain.NOT_APPLICABLE,
		"flucyt_dose_datetime": nil,
		"flucyt_dose_rx":       nil,
		"flucyt_dose_0400":     nil,
		"flucyt_dose_1000":     nil,
		"flucyt_dose_1600":     nil,
		"flucyt_dose_2200":     nil,
	})
	assert.NoError(t, err)

	err = validateFollowupMedication(t, map[string]any{
		"flucon_modified":      domain.NOT_APPLICABLE,
		"flucon_dose_datetime": nil,
		"flucon_dose":          nil,
	})
	assert.NoError(t, err)
}

func TestStudyMedicationFollowup_DrugsNotApplicableWithoutModifications(t *testing.T) {
	for _, field := range modifiedDrugFields {
		for _, answer := range []domain.Code{domain.YES, domain.NO} {
			t.Run(field+"_"+string(answer), func(t *testing.T) {
				overrides := map[string]any{
					"modifications":        domain.NO,
					"modifications_reason": nil,
					"flucon_modified":      domain.NOT_APPLICABLE,
					"flucyt_modified":      domain.NOT_APPLICABLE,
				}
				overrides[field] = answer
				err := validateFollowupMedication(t, overrides)
				assertFieldError(t, err, domain.NOT_APPLICABLE_ERROR, field, "This field is not applicable.")
			})
		}
	}
}

func TestStudyMedicationFollowup_FluconFields(t *testing.T) {
	err := validateFollowupMedication(t, map[string]any{"flucon_dose_datetime": nil})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "flucon_dose_datetime", "This field is required.")

	err = validateFollowupMedication(t, map[string]any{"flucon_modified": domain.NO})
	assertFieldError(t, err, domain.INVALID_ERROR, "flucon_dose_datetime", "This field is not required.")

	err = validateFollowupMedication(t, map[string]any{"flucon_dose": nil})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "flucon_dose", "This field is required.")

	err = validateFollowupMedication(t, map[string]any{
		"flucon_modified":      domain.NOT_APPLICABLE,
		"flucon_dose_datetime": nil,
		"flucon_dose":          nil,
		"flucon_notes":         "Some flucon notes here",
	})
	assertFieldError(t, err, domain.INVALID_ERROR, "flucon_notes", "This field is not required.")

	err = validateFollowupMedication(t, map[string]any{"flucon_dose": 200, "flucon_notes": "Week 10 step-down"})
	assert.NoError(t, err)
}

func TestStudyMedicationFollowup_FlucytFields(t *testing.T) {
	err := validateFollowupMedication(t, map[string]any{"flucyt_dose_rx": nil})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "flucyt_dose_rx", "This field is required.")

	err = validateFollowupMedication(t, map[string]any{"flucyt_dose_2200": nil})
	assertFieldError(t, err, domain.REQUIRED_ERROR, "flucyt_dose_2200", "This field is required.")

	err = validateFollowupMedication(t, map[string]any{
		"flucyt_dose_rx":   4000,
		"flucyt_dose_0400": 0,
		"flucyt_dose_1000": 1000,
		"flucyt_dose_1600": 1000,
		"flucyt_dose_2200": 0,
	})
	assertFieldError(t, err, domain.INVALID_ERROR, "flucyt_dose_0400",
		"Invalid. Expected sum of individual doses to match prescribed flucytosine dose (4000 mg/d).")

	err = validateFollowupMedication(t, map[string]any{
		"flucyt_dose_rx":   3000,
		"flucyt_dose_0400": 750,
		"flucyt_dose_1000": 750,
		"flucyt_dose_1600": 750,
		"flucyt_dose_2200": 750,
	})
	assert.NoError(t, err)

	err = validateFollowupMedication(t, map[string]any{
		"flucyt_modified":      domain.NOT_APPLICABLE,
		"flucyt_dose_datetime": nil,
		"flucyt_dose_rx":       nil,
		"flucyt_dose_0400":     nil,
		"flucyt_dose_1000":     nil,
		"flucyt_dose_1600":     nil,
		"flucyt_dose_2200":     nil,
		"flucyt_notes":         "Some flucyt notes here",
	})
	assertFieldError(t, err, domain.INVALID_ERROR, "flucyt_notes", "This field is not required.")
}
