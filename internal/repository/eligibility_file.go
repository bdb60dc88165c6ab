package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/effect-crf-validators/internal/domain"
)

// StaticEligibility serves eligibility dates from an in-memory map. It backs
// offline validation, where no screening database is reachable.
type StaticEligibility struct {
	dates map[string]time.Time
}

// NewStaticEligibility copies dates into a new provider.
func NewStaticEligibility(dates map[string]time.Time) *StaticEligibility {
	s := &StaticEligibility{dates: make(map[string]time.Time, len(dates))}
	for subject, d := range dates {
		s.dates[subject] = d
	}
	return s
}

// LoadStaticEligibility reads a JSON object mapping subject identifiers to
// eligibility dates, given as YYYY-MM-DD or RFC 3339.
func LoadStaticEligibility(path string) (*StaticEligibility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading eligibility file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing eligibility file: %w", err)
	}

	dates := make(map[string]time.Time, len(raw))
	for subject, value := range raw {
		d, err := parseEligibility(value)
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", subject, err)
		}
		dates[strings.TrimSpace(subject)] = d
	}
	return &StaticEligibility{dates: dates}, nil
}

func parseEligibility(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid eligibility date %q", value)
	}
	return t, nil
}

// EligibilityDate implements domain.EligibilityProvider.
func (s *StaticEligibility) EligibilityDate(_ context.Context, subject string) (time.Time, error) {
	d, ok := s.dates[subject]
	if !ok {
		return time.Time{}, fmt.Errorf("subject %s: %w", subject, domain.ErrNotFound)
	}
	return d, nil
}

// Len returns the number of subjects known to the provider.
func (s *StaticEligibility) Len() int {
	return len(s.dates)
}
