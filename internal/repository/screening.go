package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/domain"
)

// ScreeningRecord links a registered subject to the screening that made
// them eligible.
type ScreeningRecord struct {
	SubjectIdentifier   string
	ScreeningIdentifier string
	Eligible            bool
	EligibilityDatetime time.Time
	ReportDatetime      time.Time
	ConsentDatetime     time.Time
}

// ScreeningRepository reads screening master data. It implements
// domain.EligibilityProvider.
type ScreeningRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewScreeningRepository creates a new screening repository
func NewScreeningRepository(db *pgxpool.Pool, logger *logrus.Logger) *ScreeningRepository {
	return &ScreeningRepository{
		db:  db,
		log: logger,
	}
}

// Register inserts a screening and the registered subject that came out of
// it in one transaction. Validation only reads the screening tables; this is
// the seeding path for environments and tests where the trial database is
// not the system of record.
func (r *ScreeningRepository) Register(ctx context.Context, rec *ScreeningRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var eligibility *time.Time
	if !rec.EligibilityDatetime.IsZero() {
		eligibility = &rec.EligibilityDatetime
	}
	var consent *time.Time
	if !rec.ConsentDatetime.IsZero() {
		consent = &rec.ConsentDatetime
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO subject_screening (
			screening_identifier, eligible, eligibility_datetime, report_datetime
		) VALUES ($1, $2, $3, $4)`,
		rec.ScreeningIdentifier, rec.Eligible, eligibility, rec.ReportDatetime,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"screening_identifier": rec.ScreeningIdentifier,
			"error":                err,
		}).Error("Failed to create subject screening")
		return fmt.Errorf("creating subject screening: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO registered_subject (
			subject_identifier, screening_identifier, consent_datetime
		) VALUES ($1, $2, $3)`,
		rec.SubjectIdentifier, rec.ScreeningIdentifier, consent,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"subject_identifier": rec.SubjectIdentifier,
			"error":              err,
		}).Error("Failed to create registered subject")
		return fmt.Errorf("creating registered subject: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing registration: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"subject_identifier":   rec.SubjectIdentifier,
		"screening_identifier": rec.ScreeningIdentifier,
	}).Info("Subject registered")

	return nil
}

// GetBySubject retrieves the screening record of a registered subject.
func (r *ScreeningRepository) GetBySubject(ctx context.Context, subjectIdentifier string) (*ScreeningRecord, error) {
	query := `
		SELECT rs.subject_identifier, ss.screening_identifier, ss.eligible,
			   ss.eligibility_datetime, ss.report_datetime, rs.consent_datetime
		FROM registered_subject rs
		JOIN subject_screening ss ON ss.screening_identifier = rs.screening_identifier
		WHERE rs.subject_identifier = $1`

	var rec ScreeningRecord
	var eligibility, consent *time.Time

	err := r.db.QueryRow(ctx, query, subjectIdentifier).Scan(
		&rec.SubjectIdentifier,
		&rec.ScreeningIdentifier,
		&rec.Eligible,
		&eligibility,
		&rec.ReportDatetime,
		&consent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("subject %s not registered: %w", subjectIdentifier, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"subject_identifier": subjectIdentifier,
			"error":              err,
		}).Error("Failed to get screening by subject")
		return nil, fmt.Errorf("getting screening by subject: %w", err)
	}

	if eligibility != nil {
		rec.EligibilityDatetime = *eligibility
	}
	if consent != nil {
		rec.ConsentDatetime = *consent
	}

	return &rec, nil
}

// EligibilityDate returns the datetime the subject's screening found them
// eligible, in UTC. A subject that was screened but never eligible is
// reported as not found.
func (r *ScreeningRepository) EligibilityDate(ctx context.Context, subjectIdentifier string) (time.Time, error) {
	rec, err := r.GetBySubject(ctx, subjectIdentifier)
	if err != nil {
		return time.Time{}, err
	}
	if !rec.Eligible || rec.EligibilityDatetime.IsZero() {
		return time.Time{}, fmt.Errorf("subject %s has no eligibility date: %w", subjectIdentifier, domain.ErrNotFound)
	}
	return rec.EligibilityDatetime.UTC(), nil
}
