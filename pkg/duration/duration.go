// Package duration parses the short day/hour durations captured on CRFs,
// such as "3d", "12h" or "1d6h".
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)d)?(?:(\d+)h)?$`)

// Duration is a CRF duration expressed in whole days and hours.
type Duration struct {
	Days  int
	Hours int
}

// Parse reads a "<days>d<hours>h" duration. Either part may be omitted but
// not both. Leading zeros are accepted.
func Parse(input string) (Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Duration{}, fmt.Errorf("parsing duration: empty input")
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return Duration{}, fmt.Errorf("parsing duration %q: expected format like 1d6h", input)
	}

	var d Duration
	var err error
	if m[1] != "" {
		if d.Days, err = strconv.Atoi(m[1]); err != nil {
			return Duration{}, fmt.Errorf("parsing duration %q days: %w", input, err)
		}
	}
	if m[2] != "" {
		if d.Hours, err = strconv.Atoi(m[2]); err != nil {
			return Duration{}, fmt.Errorf("parsing duration %q hours: %w", input, err)
		}
	}
	return d, nil
}

// IsZero reports whether the duration is empty.
func (d Duration) IsZero() bool {
	return d.Days == 0 && d.Hours == 0
}

// Std converts the duration to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Days)*24*time.Hour + time.Duration(d.Hours)*time.Hour
}

func (d Duration) String() string {
	switch {
	case d.Days == 0:
		return fmt.Sprintf("%dh", d.Hours)
	case d.Hours == 0:
		return fmt.Sprintf("%dd", d.Days)
	default:
		return fmt.Sprintf("%dd%dh", d.Days, d.Hours)
	}
}
