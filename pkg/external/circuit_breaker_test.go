package external

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
)

type countingSource struct {
	calls int
	date  time.Time
	err   error
}

func (s *countingSource) EligibilityDate(_ context.Context, subject string) (time.Time, error) {
	s.calls++
	if s.err != nil {
		return time.Time{}, fmt.Errorf("subject %s: %w", subject, s.err)
	}
	return s.date, nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestResilientEligibilityProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes_Through_Results", func(t *testing.T) {
		eligibility := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
		source := &countingSource{date: eligibility}
		provider := NewResilientEligibilityProvider(source, DefaultCircuitBreakerConfig("screening"), newTestLogger())

		got, err := provider.EligibilityDate(ctx, "101-01-0001-1")
		require.NoError(t, err)
		assert.Equal(t, eligibility, got)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("Opens_After_Failures", func(t *testing.T) {
		source := &countingSource{err: errors.New("connection refused")}
		provider := NewResilientEligibilityProvider(source, DefaultCircuitBreakerConfig("screening"), newTestLogger())

		for i := 0; i < 3; i++ {
			_, err := provider.EligibilityDate(ctx, "101-01-0001-1")
			assert.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, provider.State())

		_, err := provider.EligibilityDate(ctx, "101-01-0001-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "circuit breaker open")
		assert.Equal(t, 3, source.calls, "open breaker must not reach the source")
	})

	t.Run("Not_Found_Does_Not_Trip", func(t *testing.T) {
		source := &countingSource{err: domain.ErrNotFound}
		provider := NewResilientEligibilityProvider(source, DefaultCircuitBreakerConfig("screening"), newTestLogger())

		for i := 0; i < 5; i++ {
			_, err := provider.EligibilityDate(ctx, "999-99-9999-9")
			assert.True(t, errors.Is(err, domain.ErrNotFound))
		}
		assert.Equal(t, gobreaker.StateClosed, provider.State())
		assert.Equal(t, 5, source.calls)
	})
}
