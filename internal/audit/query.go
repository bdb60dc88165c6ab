package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const auditTable = "validation_audit"

var recordColumns = []string{
	"id", "form", "subject_identifier", "visit_code", "visit_code_sequence",
	"valid", "error_kind", "errors", "duration_ns", "request_id", "validated_at",
}

// builder returns a statement builder for the store's placeholder dialect.
func builder(format sq.PlaceholderFormat) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(format)
}

func applyFilter(q sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.Form != "" {
		q = q.Where(sq.Eq{"form": filter.Form})
	}
	if filter.SubjectIdentifier != "" {
		q = q.Where(sq.Eq{"subject_identifier": filter.SubjectIdentifier})
	}
	if filter.VisitCode != "" {
		q = q.Where(sq.Eq{"visit_code": filter.VisitCode})
	}
	if filter.Valid != nil {
		q = q.Where(sq.Eq{"valid": *filter.Valid})
	}
	if !filter.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"validated_at": filter.Since.UTC()})
	}
	return q
}

func buildListQuery(format sq.PlaceholderFormat, filter Filter) (string, []any, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	q := builder(format).
		Select(recordColumns...).
		From(auditTable)
	q = applyFilter(q, filter).
		OrderBy("validated_at DESC", "id").
		Limit(uint64(limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q.ToSql()
}

func buildCountQuery(format sq.PlaceholderFormat, filter Filter) (string, []any, error) {
	q := builder(format).
		Select("COUNT(*)").
		From(auditTable)
	return applyFilter(q, filter).ToSql()
}

func buildGetQuery(format sq.PlaceholderFormat, id string) (string, []any, error) {
	return builder(format).
		Select(recordColumns...).
		From(auditTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildInsertQuery(format sq.PlaceholderFormat, rec *Record) (string, []any, error) {
	var errorsJSON any
	if len(rec.Errors) > 0 {
		data, err := json.Marshal(rec.Errors)
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal errors: %w", err)
		}
		errorsJSON = string(data)
	}

	return builder(format).
		Insert(auditTable).
		Columns(recordColumns...).
		Values(
			rec.ID,
			rec.Form,
			rec.SubjectIdentifier,
			rec.VisitCode,
			rec.VisitCodeSequence,
			rec.Valid,
			rec.ErrorKind,
			errorsJSON,
			int64(rec.Duration),
			rec.RequestID,
			rec.ValidatedAt.UTC(),
		).
		ToSql()
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row selected with recordColumns.
func scanRecord(s scanner) (*Record, error) {
	rec := &Record{}
	var subject, visitCode, errorKind, requestID sql.NullString
	var errorsJSON []byte
	var durationNS int64

	err := s.Scan(
		&rec.ID, &rec.Form, &subject, &visitCode, &rec.VisitCodeSequence,
		&rec.Valid, &errorKind, &errorsJSON, &durationNS, &requestID, &rec.ValidatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.SubjectIdentifier = subject.String
	rec.VisitCode = visitCode.String
	rec.ErrorKind = errorKind.String
	rec.RequestID = requestID.String
	rec.Duration = time.Duration(durationNS)
	rec.ValidatedAt = rec.ValidatedAt.UTC()

	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &rec.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode errors: %w", err)
		}
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var result []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
