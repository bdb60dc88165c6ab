package audit

import (
	"context"
	"database/sql"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/database"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func auditRows() *sqlmock.Rows {
	return sqlmock.NewRows(recordColumns)
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_Save_Mock(t *testing.T) {
	store, mock := newMockStore(t)
	rec := testRecord("a1", "vital_signs", false, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO validation_audit (id,form,subject_identifier")).
		WithArgs("a1", "vital_signs", "101-01-0001-1", "DAY01", 0, false, "REQUIRED_ERROR",
			sqlmock.AnyArg(), int64(2*time.Millisecond), "req-a1", baseTime).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_Mock(t *testing.T) {
	store, mock := newMockStore(t)

	rows := auditRows().
		AddRow("a2", "vital_signs", "101-01-0001-1", "DAY01", 0, false, "REQUIRED_ERROR",
			[]byte(`{"sys_blood_pressure":["This field is required."]}`), int64(3000000), "req-a2", baseTime.Add(time.Hour)).
		AddRow("a1", "vital_signs", nil, nil, 0, true, nil, nil, int64(1000000), nil, baseTime)

	mock.ExpectQuery(`SELECT (.+) FROM validation_audit WHERE form = \$1 ORDER BY validated_at DESC, id LIMIT 100`).
		WithArgs("vital_signs").
		WillReturnRows(rows)

	records, err := store.List(context.Background(), Filter{Form: "vital_signs"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a2", records[0].ID)
	assert.Equal(t, 3*time.Millisecond, records[0].Duration)
	assert.Equal(t, []string{"This field is required."}, records[0].Errors["sys_blood_pressure"])

	assert.True(t, records[1].Valid)
	assert.Empty(t, records[1].SubjectIdentifier)
	assert.Nil(t, records[1].Errors)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_Mock(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM validation_audit WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(auditRows())

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count_Mock(t *testing.T) {
	store, mock := newMockStore(t)
	valid := true

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM validation_audit WHERE valid = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := store.Count(context.Background(), Filter{Valid: &valid})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// getTestDB returns a migrated database for testing.
// Skip test if TEST_DATABASE_URL is not set.
func getTestDB(t *testing.T) *sql.DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	runner, err := database.NewMigrationRunner(dbURL, "../database/migrations", logger)
	require.NoError(t, err)
	require.NoError(t, runner.Up(context.Background()))
	require.NoError(t, runner.Close())

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM validation_audit")
	require.NoError(t, err)

	return db
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("00000000-0000-0000-0000-000000000001", "vital_signs", true, 0)))
	require.NoError(t, store.Save(ctx, testRecord("00000000-0000-0000-0000-000000000002", "vital_signs", false, time.Hour)))

	records, err := store.List(ctx, Filter{Form: "vital_signs"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", records[0].ID)
	assert.Equal(t, "REQUIRED_ERROR", records[0].ErrorKind)

	invalid := false
	count, err := store.Count(ctx, Filter{Valid: &invalid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
