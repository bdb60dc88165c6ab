package crf

import (
	"context"
	"fmt"
	"time"

	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/formvalidator"
)

// maxCragDaysBeforeEligibility bounds how long before eligibility a
// confirmatory serum/plasma CrAg result may have been taken.
const maxCragDaysBeforeEligibility = 180

func serumCragDateNoteChecks(p Providers) []formvalidator.Check {
	return []formvalidator.Check{
		func(ctx context.Context, v *formvalidator.FormValidator) error {
			return validateCragAgainstEligibility(ctx, p, v)
		},
		check(func(v *formvalidator.FormValidator) error {
			return v.DateBeforeReportDatetime("serum_crag_date")
		}),
		check(func(v *formvalidator.FormValidator) error {
			if v.Data().IsEmpty("serum_crag_date") && v.Data().IsEmpty("note") {
				return formvalidator.RaiseFields(domain.REQUIRED_ERROR,
					"A confirmed serum/plasma CrAg date and/or note is required.",
					"serum_crag_date", "note")
			}
			return nil
		}),
	}
}

func validateCragAgainstEligibility(ctx context.Context, p Providers, v *formvalidator.FormValidator) error {
	cragDate, ok := v.Data().Date("serum_crag_date")
	if !ok {
		return nil
	}
	if p.Eligibility == nil {
		return fmt.Errorf("serum_crag_date_note eligibility: %w", domain.ErrNoProvider)
	}

	subject := v.Submission().SubjectIdentifier
	eligibility, err := p.Eligibility.EligibilityDate(ctx, subject)
	if err != nil {
		return fmt.Errorf("looking up eligibility date for %s: %w", subject, err)
	}
	// Eligibility is a calendar date in UTC whatever zone the provider used.
	eligibilityDate := domain.DateOf(eligibility.UTC())

	if cragDate.After(eligibilityDate) {
		return formvalidator.RaiseInvalid("serum_crag_date",
			"Invalid. Cannot be after date participant became eligible.")
	}
	if eligibilityDate.Sub(cragDate) > maxCragDaysBeforeEligibility*24*time.Hour {
		return formvalidator.RaiseInvalid("serum_crag_date",
			"Invalid. Cannot be more than 180 days before screening.")
	}
	return nil
}
