package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/effect-crf-validators/internal/database"
	"github.com/effect-crf-validators/internal/domain"
)

// generateTestPassword creates a secure random password for test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := database.Config{
		Host:        host,
		Port:        port.Int(),
		Database:    "testdb",
		Username:    "testuser",
		Password:    testPassword,
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: time.Minute * 30,
		SSLMode:     "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	if err := database.Migrate(ctx, config, "../database/migrations", logger); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func TestScreeningRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewScreeningRepository(db.Pool, logger)
	ctx := context.Background()

	eligibility := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
	err := repo.Register(ctx, &ScreeningRecord{
		SubjectIdentifier:   "101-01-0001-1",
		ScreeningIdentifier: "SCR-0001",
		Eligible:            true,
		EligibilityDatetime: eligibility,
		ReportDatetime:      eligibility.Add(-time.Hour),
		ConsentDatetime:     eligibility.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to register subject: %v", err)
	}

	err = repo.Register(ctx, &ScreeningRecord{
		SubjectIdentifier:   "101-01-0002-2",
		ScreeningIdentifier: "SCR-0002",
		Eligible:            false,
		ReportDatetime:      eligibility,
	})
	if err != nil {
		t.Fatalf("Failed to register ineligible subject: %v", err)
	}

	t.Run("EligibilityDate", func(t *testing.T) {
		got, err := repo.EligibilityDate(ctx, "101-01-0001-1")
		if err != nil {
			t.Fatalf("Failed to get eligibility date: %v", err)
		}
		if !got.Equal(eligibility) {
			t.Errorf("Expected eligibility %v, got %v", eligibility, got)
		}
		if got.Location() != time.UTC {
			t.Errorf("Expected eligibility in UTC, got %v", got.Location())
		}
	})

	t.Run("GetBySubject", func(t *testing.T) {
		rec, err := repo.GetBySubject(ctx, "101-01-0001-1")
		if err != nil {
			t.Fatalf("Failed to get screening: %v", err)
		}
		if rec.ScreeningIdentifier != "SCR-0001" {
			t.Errorf("Expected screening SCR-0001, got %s", rec.ScreeningIdentifier)
		}
		if !rec.ConsentDatetime.Equal(eligibility.Add(time.Hour)) {
			t.Errorf("Unexpected consent datetime %v", rec.ConsentDatetime)
		}
	})

	t.Run("NotEligible", func(t *testing.T) {
		_, err := repo.EligibilityDate(ctx, "101-01-0002-2")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		_, err := repo.EligibilityDate(ctx, "999-99-9999-9")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DuplicateScreening", func(t *testing.T) {
		err := repo.Register(ctx, &ScreeningRecord{
			SubjectIdentifier:   "101-01-0003-3",
			ScreeningIdentifier: "SCR-0001",
			ReportDatetime:      eligibility,
		})
		if err == nil {
			t.Error("Expected error registering a duplicate screening identifier")
		}
	})
}
