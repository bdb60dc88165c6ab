package crf

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

const testSubject = "101-01-0001-1"

var (
	testReportDatetime = time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	testEligibility    = time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
)

type fakeEligibility map[string]time.Time

func (f fakeEligibility) EligibilityDate(_ context.Context, subject string) (time.Time, error) {
	d, ok := f[subject]
	if !ok {
		return time.Time{}, fmt.Errorf("subject %s: %w", subject, domain.ErrNotFound)
	}
	return d, nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return NewRegistry(logger, Providers{
		Eligibility: fakeEligibility{testSubject: testEligibility},
	})
}

func newSubmission(form string, visit *domain.Visit, fields map[string]any) *domain.Submission {
	return &domain.Submission{
		Form:              form,
		SubjectIdentifier: testSubject,
		ReportDatetime:    testReportDatetime,
		Visit:             visit,
		Fields:            domain.NewFieldStore(fields),
	}
}

func baselineVisit() *domain.Visit {
	return &domain.Visit{VisitCode: domain.DAY01, AssessmentType: domain.IN_PERSON, AssessmentWho: domain.PATIENT, InfoSource: domain.PATIENT}
}

func followupVisit(code domain.VisitCode, seq int) *domain.Visit {
	return &domain.Visit{VisitCode: code, VisitCodeSequence: seq, AssessmentType: domain.IN_PERSON, AssessmentWho: domain.PATIENT, InfoSource: domain.PATIENT}
}

// merge returns a copy of base with overrides applied.
func merge(base map[string]any, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func validate(t *testing.T, r *Registry, sub *domain.Submission) error {
	t.Helper()
	return r.Validate(context.Background(), sub)
}

func assertFieldError(t *testing.T, err error, kind domain.ErrorKind, field, msg string) {
	t.Helper()
	require.Error(t, err)
	fe, ok := formvalidator.AsFormError(err)
	require.True(t, ok, "expected *domain.FormError, got %v", err)
	assert.Equal(t, kind, fe.Kind, "unexpected kind: %v", fe)
	require.True(t, fe.Has(field), "expected error on %q, got %v", field, fe)
	assert.Contains(t, fe.Message(field), msg)
}

func choices(codes ...domain.Code) []domain.Choice {
	out := make([]domain.Choice, 0, len(codes))
	for _, c := range codes {
		out = append(out, domain.Choice{Name: c, DisplayName: string(c)})
	}
	return out
}
