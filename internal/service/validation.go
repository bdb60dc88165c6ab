package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/crf"
	"github.com/effect-crf-validators/internal/domain"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
var ErrBatchTooLarge = errors.New("batch exceeds maximum size")

// ValidationService runs submissions through the CRF rule sets and records
// every outcome on the audit trail.
type ValidationService struct {
	logger       *logrus.Logger
	registry     *crf.Registry
	recorder     domain.ResultRecorder
	maxBatchSize int

	// Concurrency control
	batchSemaphore chan struct{}
	maxWorkers     int
}

// BatchItem is the outcome of one submission in a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Index  int                      `json:"index"`
	Result *domain.ValidationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// NewValidationService creates a new validation service. recorder may be nil
// when auditing is disabled.
func NewValidationService(
	logger *logrus.Logger,
	registry *crf.Registry,
	recorder domain.ResultRecorder,
	config domain.ServiceConfig,
) *ValidationService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 8
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = 100
	}

	return &ValidationService{
		logger:         logger,
		registry:       registry,
		recorder:       recorder,
		maxBatchSize:   config.MaxBatchSize,
		batchSemaphore: make(chan struct{}, config.MaxWorkers),
		maxWorkers:     config.MaxWorkers,
	}
}

// Forms returns the rule sets known to the service.
func (s *ValidationService) Forms() []*crf.RuleSet {
	return s.registry.Forms()
}

// Validate runs the rule set of sub.Form. A protocol violation is reported
// as a result with Valid false; the returned error is reserved for malformed
// submissions, unknown forms and unavailable context providers.
func (s *ValidationService) Validate(ctx context.Context, sub *domain.Submission, requestID string) (*domain.ValidationResult, error) {
	if sub == nil {
		return nil, domain.NewValidationError("submission", "submission is required", nil)
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	fields := s.submissionFields(sub, requestID)
	s.logger.WithFields(fields).Debug("Validating submission")

	err := s.registry.Validate(ctx, sub)

	result := &domain.ValidationResult{
		ID:                uuid.New().String(),
		Form:              sub.Form,
		SubjectIdentifier: sub.SubjectIdentifier,
		Valid:             err == nil,
		Duration:          time.Since(startTime),
		ValidatedAt:       time.Now().UTC(),
		RequestID:         requestID,
	}
	if sub.Visit != nil {
		result.VisitCode = sub.Visit.VisitCode
		result.VisitCodeSequence = sub.Visit.VisitCodeSequence
	}

	if err != nil {
		var formErr *domain.FormError
		if !errors.As(err, &formErr) {
			s.logger.WithFields(fields).WithError(err).Error("Validation could not be completed")
			return nil, fmt.Errorf("validating %s: %w", sub.Form, err)
		}
		result.Error = formErr
		s.logger.WithFields(fields).WithFields(logrus.Fields{
			"kind":   formErr.Kind,
			"fields": formErr.Fields(),
		}).Info("Submission failed validation")
	} else {
		s.logger.WithFields(fields).WithField("duration", result.Duration).Debug("Submission is valid")
	}

	s.record(ctx, result)

	return result, nil
}

// ValidateBatch validates independent submissions concurrently with a
// bounded number of workers. Items are returned in input order.
func (s *ValidationService) ValidateBatch(ctx context.Context, subs []*domain.Submission, requestID string) ([]*BatchItem, error) {
	if len(subs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(subs), s.maxBatchSize)
	}

	items := make([]*BatchItem, len(subs))
	if len(subs) == 0 {
		return items, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	valid, invalid, failed := 0, 0, 0

	s.logger.WithFields(logrus.Fields{
		"batch_size":  len(subs),
		"max_workers": s.maxWorkers,
		"request_id":  requestID,
	}).Info("Starting batch validation")

	for i, sub := range subs {
		wg.Add(1)
		go func(index int, sub *domain.Submission) {
			defer wg.Done()

			item := &BatchItem{Index: index}

			// Acquire semaphore to limit concurrency
			select {
			case s.batchSemaphore <- struct{}{}:
				defer func() { <-s.batchSemaphore }()
			case <-ctx.Done():
				item.Error = ctx.Err().Error()
				mu.Lock()
				items[index] = item
				failed++
				mu.Unlock()
				return
			}

			result, err := s.Validate(ctx, sub, requestID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				item.Error = err.Error()
				failed++
			case result.Valid:
				item.Result = result
				valid++
			default:
				item.Result = result
				invalid++
			}
			items[index] = item
		}(i, sub)
	}

	wg.Wait()

	s.logger.WithFields(logrus.Fields{
		"batch_size": len(subs),
		"valid":      valid,
		"invalid":    invalid,
		"failed":     failed,
		"request_id": requestID,
	}).Info("Completed batch validation")

	return items, nil
}

func (s *ValidationService) record(ctx context.Context, result *domain.ValidationResult) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordResult(ctx, result); err != nil {
		// The outcome stands even if the audit write fails.
		s.logger.WithFields(logrus.Fields{
			"result_id": result.ID,
			"form":      result.Form,
		}).WithError(err).Warn("Failed to record validation result")
	}
}

func (s *ValidationService) submissionFields(sub *domain.Submission, requestID string) logrus.Fields {
	fields := logrus.Fields{
		"form":       sub.Form,
		"subject":    sub.SubjectIdentifier,
		"request_id": requestID,
	}
	if sub.Visit != nil {
		fields["visit_code"] = sub.Visit.VisitCode
		fields["visit_code_sequence"] = sub.Visit.VisitCodeSequence
	}
	return fields
}
