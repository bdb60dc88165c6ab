package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/effect-crf-validators/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite. It backs the
// offline validator.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite audit store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes from concurrent batch workers go through a single connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the audit table and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS validation_audit (
		id TEXT PRIMARY KEY,
		form TEXT NOT NULL,
		subject_identifier TEXT DEFAULT '',
		visit_code TEXT DEFAULT '',
		visit_code_sequence INTEGER NOT NULL DEFAULT 0,
		valid INTEGER NOT NULL,
		error_kind TEXT DEFAULT '',
		errors TEXT,
		duration_ns INTEGER NOT NULL,
		request_id TEXT DEFAULT '',
		validated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_validation_audit_form ON validation_audit(form);
	CREATE INDEX IF NOT EXISTS idx_validation_audit_subject ON validation_audit(subject_identifier);
	CREATE INDEX IF NOT EXISTS idx_validation_audit_validated_at ON validation_audit(validated_at);
	`

	_, err := db.Exec(schema)
	return err
}

// RecordResult stores the outcome of one validation pass.
func (s *SQLiteStore) RecordResult(ctx context.Context, result *domain.ValidationResult) error {
	return s.Save(ctx, RecordFromResult(result))
}

// Save stores a record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	query, args, err := buildInsertQuery(sq.Question, record)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	query, args, err := buildGetQuery(sq.Question, id)
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns matching records, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	query, args, err := buildListQuery(sq.Question, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the number of matching records.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int64, error) {
	query, args, err := buildCountQuery(sq.Question, filter)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// ExportJSON writes every matching record to writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, filter Filter, writer io.Writer) error {
	return exportJSON(ctx, s, filter, writer)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
