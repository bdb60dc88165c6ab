// Package schedule answers visit schedule questions for the rule sets: which
// timepoint is baseline, what a timepoint is called in messages, and whether
// a visit code belongs to the schedule at all.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/effect-crf-validators/internal/domain"
)

var visitCodePattern = regexp.MustCompile(`^(DAY|WEEK)(\d{2})$`)

// titleOverrides holds the timepoints whose label is not derived from the
// code. The final visit is reported to sites in months.
var titleOverrides = map[domain.VisitCode]string{
	domain.WEEK24: "Month 6",
}

// Schedule is an ordered list of visit codes. The first code is baseline.
type Schedule struct {
	codes []domain.VisitCode
	index map[domain.VisitCode]int
}

// New builds a schedule from visit codes in timepoint order.
func New(codes []string) (*Schedule, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("schedule must have at least one visit code")
	}

	s := &Schedule{
		codes: make([]domain.VisitCode, 0, len(codes)),
		index: make(map[domain.VisitCode]int, len(codes)),
	}
	for _, c := range codes {
		code := domain.VisitCode(c)
		if !visitCodePattern.MatchString(c) {
			return nil, fmt.Errorf("invalid visit code %q", c)
		}
		if _, dup := s.index[code]; dup {
			return nil, fmt.Errorf("duplicate visit code %q", c)
		}
		s.index[code] = len(s.codes)
		s.codes = append(s.codes, code)
	}
	return s, nil
}

// Default returns the EFFECT follow-up schedule.
func Default() *Schedule {
	s, _ := New([]string{"DAY01", "DAY03", "DAY09", "DAY14", "WEEK04", "WEEK06", "WEEK10", "WEEK16", "WEEK24"})
	return s
}

// Baseline returns the first visit code of the schedule.
func (s *Schedule) Baseline() domain.VisitCode {
	return s.codes[0]
}

// IsBaseline reports whether visit is the scheduled baseline encounter.
// Unscheduled visits at the baseline timepoint are not baseline.
func (s *Schedule) IsBaseline(visit domain.Visit) bool {
	return visit.VisitCode == s.Baseline() && visit.VisitCodeSequence == 0
}

// Contains reports whether code belongs to the schedule.
func (s *Schedule) Contains(code domain.VisitCode) bool {
	_, ok := s.index[code]
	return ok
}

// Codes returns the visit codes in order.
func (s *Schedule) Codes() []domain.VisitCode {
	out := make([]domain.VisitCode, len(s.codes))
	copy(out, s.codes)
	return out
}

// Title returns the label used for code in messages, e.g. "Week 10".
func (s *Schedule) Title(code domain.VisitCode) string {
	if title, ok := titleOverrides[code]; ok {
		return title
	}
	m := visitCodePattern.FindStringSubmatch(string(code))
	if m == nil {
		return string(code)
	}
	n, _ := strconv.Atoi(m[2])
	if m[1] == "DAY" {
		return fmt.Sprintf("Day %d", n)
	}
	return fmt.Sprintf("Week %d", n)
}
