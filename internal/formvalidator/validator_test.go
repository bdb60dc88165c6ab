package formvalidator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
)

var reportDatetime = time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

func newValidator(fields map[string]any) *FormValidator {
	return New(&domain.Submission{
		Form:              "test_form",
		SubjectIdentifier: "101-01-0001-1",
		ReportDatetime:    reportDatetime,
		Visit:             &domain.Visit{VisitCode: domain.DAY14},
		Fields:            domain.NewFieldStore(fields),
	})
}

func requireFormError(t *testing.T, err error, kind domain.ErrorKind, field, msg string) {
	t.Helper()
	require.Error(t, err)
	fe, ok := AsFormError(err)
	require.True(t, ok, "expected *domain.FormError, got %T", err)
	assert.Equal(t, kind, fe.Kind)
	require.True(t, fe.Has(field), "expected error on %q, got %v", field, fe.Fields())
	assert.Contains(t, fe.Message(field), msg)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	v := newValidator(map[string]any{"a": "x"})
	var evaluated []string

	check := func(name string, err error) Check {
		return func(ctx context.Context, v *FormValidator) error {
			evaluated = append(evaluated, name)
			return err
		}
	}

	err := v.Run(context.Background(),
		check("first", nil),
		check("second", RaiseInvalid("a", "bad")),
		check("third", RaiseInvalid("b", "worse")),
	)

	requireFormError(t, err, domain.INVALID_ERROR, "a", "bad")
	assert.Equal(t, []string{"first", "second"}, evaluated)
}

func TestRun_HonoursCancelledContext(t *testing.T) {
	v := newValidator(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := v.Run(ctx, func(ctx context.Context, v *FormValidator) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_IsRepeatable(t *testing.T) {
	v := newValidator(map[string]any{"on_art": domain.YES})
	checks := []Check{
		func(ctx context.Context, v *FormValidator) error {
			return v.RequiredIf(domain.YES, "on_art", "art_date")
		},
	}

	first := v.Run(context.Background(), checks...)
	second := v.Run(context.Background(), checks...)

	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
}

func TestRequiredIf(t *testing.T) {
	tests := []struct {
		name    string
		trigger any
		value   any
		kind    domain.ErrorKind
		msg     string
	}{
		{"trigger with answer", domain.YES, "2024-01-01", "", ""},
		{"trigger without answer", domain.YES, nil, domain.REQUIRED_ERROR, RequiredMsg},
		{"trigger with blank answer", domain.YES, "  ", domain.REQUIRED_ERROR, RequiredMsg},
		{"no trigger with answer", domain.NO, "2024-01-01", domain.INVALID_ERROR, NotRequiredMsg},
		{"no trigger without answer", domain.NO, nil, "", ""},
		{"unanswered trigger with answer", nil, "x", domain.INVALID_ERROR, NotRequiredMsg},
		{"trigger as plain string", "Yes", "x", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(map[string]any{"a": tt.trigger, "b": tt.value})
			err := v.RequiredIf(domain.YES, "a", "b")
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			requireFormError(t, err, tt.kind, "b", tt.msg)
		})
	}
}

func TestRequiredIfTrue_Options(t *testing.T) {
	t.Run("custom message appended", func(t *testing.T) {
		v := newValidator(map[string]any{})
		err := v.RequiredIfTrue(true, "notes", WithRequiredMessage("Fluconazole dose not 1200 mg/d."))
		requireFormError(t, err, domain.REQUIRED_ERROR, "notes",
			"This field is required. Fluconazole dose not 1200 mg/d.")
	})

	t.Run("no inverse leaves answer alone", func(t *testing.T) {
		v := newValidator(map[string]any{"notes": "some notes"})
		assert.NoError(t, v.RequiredIfTrue(false, "notes", NoInverse()))
	})

	t.Run("zero is an answer", func(t *testing.T) {
		v := newValidator(map[string]any{"dose": 0})
		assert.NoError(t, v.RequiredIfTrue(true, "dose", EvaluateAsInt()))
	})

	t.Run("zero from JSON is an answer", func(t *testing.T) {
		v := newValidator(map[string]any{"dose": float64(0)})
		assert.NoError(t, v.RequiredIfTrue(true, "dose", EvaluateAsInt()))
	})

	t.Run("blank is not an int answer", func(t *testing.T) {
		v := newValidator(map[string]any{"dose": ""})
		err := v.RequiredIfTrue(true, "dose", EvaluateAsInt())
		requireFormError(t, err, domain.REQUIRED_ERROR, "dose", RequiredMsg)
	})
}

func TestApplicableIfTrue(t *testing.T) {
	tests := []struct {
		name      string
		condition bool
		value     any
		kind      domain.ErrorKind
		msg       string
	}{
		{"applicable and answered", true, domain.NO, "", ""},
		{"applicable but NA", true, domain.NOT_APPLICABLE, domain.APPLICABLE_ERROR, ApplicableMsg},
		{"applicable but blank", true, nil, domain.REQUIRED_ERROR, RequiredMsg},
		{"not applicable and NA", false, domain.NOT_APPLICABLE, "", ""},
		{"not applicable but answered", false, domain.YES, domain.NOT_APPLICABLE_ERROR, NotApplicableMsg},
		{"not applicable but blank", false, nil, domain.NOT_APPLICABLE_ERROR, NotApplicableMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(map[string]any{"f": tt.value})
			err := v.ApplicableIfTrue(tt.condition, "f")
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			requireFormError(t, err, tt.kind, "f", tt.msg)
		})
	}
}

func TestApplicableIfTrue_CustomMessages(t *testing.T) {
	v := newValidator(map[string]any{"reportable_as_ae": domain.YES})
	err := v.ApplicableIfTrue(false, "reportable_as_ae", WithNotApplicableMessage("Not applicable at baseline"))
	requireFormError(t, err, domain.NOT_APPLICABLE_ERROR, "reportable_as_ae", "Not applicable at baseline")

	v = newValidator(map[string]any{"reportable_as_ae": domain.NOT_APPLICABLE})
	err = v.ApplicableIfTrue(true, "reportable_as_ae", WithApplicableMessage("Expected an answer."))
	requireFormError(t, err, domain.APPLICABLE_ERROR, "reportable_as_ae", "Expected an answer.")
}

func TestApplicableIf_And_NotApplicableIf(t *testing.T) {
	v := newValidator(map[string]any{"tb_prev_dx": domain.YES, "tb_site": domain.NOT_APPLICABLE})
	requireFormError(t, v.ApplicableIf(domain.YES, "tb_prev_dx", "tb_site"),
		domain.APPLICABLE_ERROR, "tb_site", ApplicableMsg)

	v = newValidator(map[string]any{"survival_status": domain.DEAD, "adherence_counselling": domain.YES})
	err := v.NotApplicableIf(domain.DEAD, "survival_status", "adherence_counselling",
		WithNotApplicableMessage("Invalid: Expected 'Not applicable' if survival status is 'Deceased'"))
	requireFormError(t, err, domain.NOT_APPLICABLE_ERROR, "adherence_counselling", "Deceased")

	v = newValidator(map[string]any{"survival_status": domain.ALIVE, "adherence_counselling": domain.NO})
	assert.NoError(t, v.NotApplicableIf(domain.DEAD, "survival_status", "adherence_counselling"))
}

func TestValidateOtherSpecify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		other any
		kind  domain.ErrorKind
	}{
		{"other with text", domain.OTHER, "walk-in", ""},
		{"other without text", domain.OTHER, "", domain.REQUIRED_ERROR},
		{"not other with text", domain.IN_PERSON, "walk-in", domain.INVALID_ERROR},
		{"not other without text", domain.IN_PERSON, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(map[string]any{"assessment_type": tt.value, "assessment_type_other": tt.other})
			err := v.ValidateOtherSpecify("assessment_type")
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := AsFormError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.True(t, fe.Has("assessment_type_other"))
		})
	}
}

func TestValidateOtherSpecify_CustomFieldAndValue(t *testing.T) {
	v := newValidator(map[string]any{"flucon_dose": domain.OTHER, "flucon_dose_other": nil})
	requireFormError(t, v.ValidateOtherSpecify("flucon_dose"), domain.REQUIRED_ERROR, "flucon_dose_other", RequiredMsg)

	v = newValidator(map[string]any{"organism": domain.BACTERIA, "bacteria_detail": "E. coli"})
	assert.NoError(t, v.ValidateOtherSpecify("organism",
		WithOtherValue(domain.BACTERIA), WithOtherField("bacteria_detail")))
}

func TestM2MOtherSpecify(t *testing.T) {
	v := newValidator(map[string]any{"current_sx": []string{"headache", "OTHER"}, "current_sx_other": ""})
	requireFormError(t, v.M2MOtherSpecify(domain.OTHER, "current_sx", "current_sx_other"),
		domain.REQUIRED_ERROR, "current_sx_other", RequiredMsg)

	v = newValidator(map[string]any{"current_sx": []string{"headache"}, "current_sx_other": "rash"})
	requireFormError(t, v.M2MOtherSpecify(domain.OTHER, "current_sx", "current_sx_other"),
		domain.INVALID_ERROR, "current_sx_other", NotRequiredMsg)
}

func TestM2MSelectionRules(t *testing.T) {
	choices := []any{
		map[string]any{"name": "per_protocol", "display_name": "Per protocol"},
		map[string]any{"name": "toxicity", "display_name": "Toxicity"},
	}

	t.Run("single selection violated", func(t *testing.T) {
		v := newValidator(map[string]any{"reason": choices})
		requireFormError(t, v.M2MSingleSelectionIf(domain.PER_PROTOCOL, "reason"), domain.INVALID_ERROR,
			"reason", "Invalid combination. 'Per protocol' may not be combined with other selections")
	})

	t.Run("single selection alone", func(t *testing.T) {
		v := newValidator(map[string]any{"reason": choices[:1]})
		assert.NoError(t, v.M2MSingleSelectionIf(domain.PER_PROTOCOL, "reason"))
	})

	t.Run("selection expected", func(t *testing.T) {
		v := newValidator(map[string]any{"current_sx": []domain.Code{domain.HEADACHE}})
		requireFormError(t, v.M2MSelectionExpected(domain.NONE, "current_sx", "Expected 'none' only."),
			domain.INVALID_ERROR, "current_sx", "Expected 'none' only.")

		v = newValidator(map[string]any{"current_sx": []domain.Code{domain.NONE}})
		assert.NoError(t, v.M2MSelectionExpected(domain.NONE, "current_sx", "Expected 'none' only."))
	})

	t.Run("selections not expected", func(t *testing.T) {
		v := newValidator(map[string]any{"current_sx": []domain.Choice{{Name: domain.NONE, DisplayName: "None"}}})
		requireFormError(t, v.M2MSelectionsNotExpected("current_sx", domain.NONE, domain.NOT_APPLICABLE),
			domain.INVALID_ERROR, "current_sx", "'None'")

		v = newValidator(map[string]any{"current_sx": []string{"headache"}})
		assert.NoError(t, v.M2MSelectionsNotExpected("current_sx", domain.NONE, domain.NOT_APPLICABLE))
	})
}

func TestM2MApplicableIfTrue(t *testing.T) {
	tests := []struct {
		name       string
		condition  bool
		selections any
		kind       domain.ErrorKind
	}{
		{"applicable with regimen", true, []string{"TDF_3TC_DTG"}, ""},
		{"applicable but NA", true, []string{"N/A"}, domain.APPLICABLE_ERROR},
		{"applicable but empty", true, nil, domain.REQUIRED_ERROR},
		{"not applicable with NA", false, []string{"N/A"}, ""},
		{"not applicable and empty", false, nil, ""},
		{"not applicable with regimen", false, []string{"TDF_3TC_DTG"}, domain.NOT_APPLICABLE_ERROR},
		{"not applicable with NA and regimen", false, []string{"N/A", "TDF_3TC_DTG"}, domain.NOT_APPLICABLE_ERROR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(map[string]any{"regimen": tt.selections})
			err := v.M2MApplicableIfTrue(tt.condition, "regimen")
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := AsFormError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, fe.Kind)
		})
	}
}

func TestDateOrdering(t *testing.T) {
	t.Run("not before", func(t *testing.T) {
		v := newValidator(map[string]any{"initial": "2023-05-01", "current": "2023-04-30"})
		requireFormError(t, v.DateNotBefore("initial", "current", "Invalid. Cannot be before ART start date"),
			domain.INVALID_ERROR, "current", "Cannot be before ART start date")

		v = newValidator(map[string]any{"initial": "2023-05-01", "current": "2023-05-01"})
		assert.NoError(t, v.DateNotBefore("initial", "current", "x"))
	})

	t.Run("missing values pass", func(t *testing.T) {
		v := newValidator(map[string]any{"initial": "2023-05-01"})
		assert.NoError(t, v.DateNotBefore("initial", "current", "x"))
		assert.NoError(t, v.DateNotEqual("initial", "current", "x"))
		assert.NoError(t, v.DateEqual("initial", "current", "x"))
	})

	t.Run("not equal on chosen field", func(t *testing.T) {
		v := newValidator(map[string]any{"current": "2023-05-01", "initial": "2023-05-01"})
		requireFormError(t, v.DateNotEqual("current", "initial", "equal", OnField("current")),
			domain.INVALID_ERROR, "current", "equal")
	})

	t.Run("equal", func(t *testing.T) {
		v := newValidator(map[string]any{"a": "2023-05-01", "b": "2023-05-01T09:00:00Z"})
		assert.NoError(t, v.DateEqual("a", "b", "x"))

		v = newValidator(map[string]any{"a": "2023-05-01", "b": "2023-05-02"})
		requireFormError(t, v.DateEqual("a", "b", "differ"), domain.INVALID_ERROR, "b", "differ")
	})
}

func TestDateBeforeReportDatetime(t *testing.T) {
	tests := []struct {
		name  string
		value any
		opts  []Option
		msg   string
	}{
		{"date on report date", "2024-03-14", nil, ""},
		{"date after report date", "2024-03-15", nil, OnOrBeforeReportMsg},
		{"datetime before report", "2024-03-14T10:00:00Z", nil, ""},
		{"datetime equal to report", "2024-03-14T10:30:00Z", nil, ""},
		{"datetime after report", "2024-03-14T10:31:00Z", nil, OnOrBeforeReportMsg},
		{"exclusive equal", "2024-03-14T10:30:00Z", []Option{Exclusive()}, BeforeReportMsg},
		{"exclusive date same day", "2024-03-14", []Option{Exclusive()}, BeforeReportMsg},
		{"time value at midnight is a date", time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), nil, ""},
		{"blank", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(map[string]any{"f": tt.value})
			err := v.DateBeforeReportDatetime("f", tt.opts...)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			requireFormError(t, err, domain.INVALID_ERROR, "f", tt.msg)
		})
	}
}

func TestDateBeforeReportDatetime_FallsBackToField(t *testing.T) {
	v := New(&domain.Submission{
		Form: "test_form",
		Fields: domain.NewFieldStore(map[string]any{
			"report_datetime": "2024-03-14T10:30:00Z",
			"f":               "2024-03-20",
		}),
	})
	requireFormError(t, v.ValidateDateAgainstReportDatetime("f"), domain.INVALID_ERROR, "f", OnOrBeforeReportMsg)
}
