package crf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
)

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry(t)

	names := r.Names()
	assert.Equal(t, []string{
		"arv_history",
		"blood_culture",
		"chest_xray",
		"followup",
		"mental_status",
		"patient_history",
		"serum_crag_date_note",
		"signs_and_symptoms",
		"study_medication_baseline",
		"study_medication_followup",
		"subject_visit",
		"vital_signs",
	}, names)
	assert.Len(t, r.Forms(), len(names))
}

func TestRegistry_UnknownForm(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("lab_results")
	assert.ErrorIs(t, err, domain.ErrUnknownForm)

	err = r.Validate(context.Background(), newSubmission("lab_results", nil, nil))
	assert.ErrorIs(t, err, domain.ErrUnknownForm)
}

func TestRegistry_MissingVisit(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Validate(context.Background(), newSubmission("vital_signs", nil, map[string]any{}))
	assert.ErrorIs(t, err, domain.ErrMissingVisit)
}

func TestRuleSet_ValidationIsRepeatable(t *testing.T) {
	r := newTestRegistry(t)
	rs, err := r.Get("vital_signs")
	require.NoError(t, err)

	sub := newSubmission("vital_signs", followupVisit(domain.DAY14, 0), map[string]any{
		"sys_blood_pressure": 120,
		"dia_blood_pressure": 130,
	})

	first := rs.Validate(context.Background(), sub)
	second := rs.Validate(context.Background(), sub)
	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
}

func TestRuleSet_CancelledContext(t *testing.T) {
	r := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Validate(ctx, newSubmission("blood_culture", followupVisit(domain.DAY14, 0), map[string]any{}))
	assert.ErrorIs(t, err, context.Canceled)
}
