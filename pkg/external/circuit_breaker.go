package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/effect-crf-validators/internal/domain"
)

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Name        string        `json:"name"`
	MaxRequests uint32        `json:"max_requests"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
	MinRequests uint32        `json:"min_requests"`
	FailureRate float64       `json:"failure_rate"`
}

// DefaultCircuitBreakerConfig trips after three requests when at least 60%
// of them failed, and tries again after a minute.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		MinRequests: 3,
		FailureRate: 0.6,
	}
}

// ResilientEligibilityProvider guards an eligibility source with a circuit
// breaker. Unknown subjects are answers, not faults, and never trip it.
type ResilientEligibilityProvider struct {
	source  domain.EligibilityProvider
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientEligibilityProvider wraps source with a circuit breaker.
func NewResilientEligibilityProvider(source domain.EligibilityProvider, config CircuitBreakerConfig, logger *logrus.Logger) *ResilientEligibilityProvider {
	if config.MinRequests == 0 {
		config.MinRequests = 3
	}
	if config.FailureRate == 0 {
		config.FailureRate = 0.6
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= config.MinRequests && failureRatio >= config.FailureRate
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker changed state")
		},
	})

	return &ResilientEligibilityProvider{
		source:  source,
		breaker: breaker,
		logger:  logger,
	}
}

// EligibilityDate queries the source through the circuit breaker.
func (r *ResilientEligibilityProvider) EligibilityDate(ctx context.Context, subject string) (time.Time, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.source.EligibilityDate(ctx, subject)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return time.Time{}, fmt.Errorf("eligibility service unavailable (circuit breaker open): %w", err)
		}
		return time.Time{}, err
	}
	return result.(time.Time), nil
}

// State returns the current breaker state.
func (r *ResilientEligibilityProvider) State() gobreaker.State {
	return r.breaker.State()
}
