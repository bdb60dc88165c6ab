package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/api"
	"github.com/effect-crf-validators/internal/audit"
	"github.com/effect-crf-validators/internal/config"
	"github.com/effect-crf-validators/internal/crf"
	"github.com/effect-crf-validators/internal/database"
	"github.com/effect-crf-validators/internal/domain"
	"github.com/effect-crf-validators/internal/logging"
	"github.com/effect-crf-validators/internal/repository"
	"github.com/effect-crf-validators/internal/schedule"
	"github.com/effect-crf-validators/internal/service"
	"github.com/effect-crf-validators/internal/vitals"
	"github.com/effect-crf-validators/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := run(ctx, configManager, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func run(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) error {
	cfg := configManager.GetConfig()

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting CRF validation server")

	dbConfig := database.ConfigFrom(cfg.Database)
	db, err := database.NewConnection(ctx, dbConfig, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, dbConfig, cfg.Database.MigrationsPath, logger); err != nil {
			return err
		}
	}

	sched, err := schedule.New(cfg.Schedule.VisitCodes)
	if err != nil {
		return fmt.Errorf("building visit schedule: %w", err)
	}
	thresholds, err := vitals.New(cfg.Vitals)
	if err != nil {
		return fmt.Errorf("building vitals thresholds: %w", err)
	}

	// Eligibility: screening table behind a circuit breaker, cached in
	// memory and optionally in Redis.
	screening := repository.NewScreeningRepository(db.Pool, logger)

	breakerConfig := external.DefaultCircuitBreakerConfig("screening")
	if cfg.Cache.BreakerTimeout > 0 {
		breakerConfig.Timeout = cfg.Cache.BreakerTimeout
	}
	if cfg.Cache.BreakerFailures > 0 {
		breakerConfig.MinRequests = cfg.Cache.BreakerFailures
	}
	resilient := external.NewResilientEligibilityProvider(screening, breakerConfig, logger)

	var redisTier service.EligibilityCache
	var cacheClient *external.CacheClient
	if cfg.Cache.RedisAddr != "" {
		cacheClient, err = external.NewCacheClient(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running with the memory cache only")
		} else {
			defer cacheClient.Close()
			redisTier = cacheClient
		}
	}

	resolver, err := service.NewCachedEligibilityResolver(service.EligibilityResolverConfig{
		RedisCacheTTL: cfg.Cache.DefaultTTL,
		MaxMemorySize: cfg.Cache.MemoryCacheSize,
	}, resilient, redisTier, logger)
	if err != nil {
		return err
	}

	registry := crf.NewRegistry(logger, crf.Providers{
		Schedule:    sched,
		Eligibility: resolver,
		Vitals:      thresholds,
	})

	store, err := openAuditStore(cfg, dbConfig)
	if err != nil {
		return err
	}
	var recorder domain.ResultRecorder
	if store != nil {
		defer store.Close()
		recorder = store
	}

	validator := service.NewValidationService(logger, registry, recorder, cfg.Validation)

	server := api.NewServer(configManager, logger, validator, store)
	server.SetEligibilityCache(resolver)
	server.AddHealthCheck("database", db.Health)
	if redisTier != nil {
		server.AddHealthCheck("redis", cacheClient.Ping)
	}

	return server.Start(ctx)
}

// openAuditStore returns nil when auditing is disabled.
func openAuditStore(cfg *domain.Config, dbConfig database.Config) (audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}

	switch cfg.Audit.Backend {
	case "sqlite":
		return audit.NewSQLiteStore(cfg.Audit.DSN)
	default:
		dsn := cfg.Audit.DSN
		if dsn == "" {
			dsn = dbConfig.URL()
		}
		return audit.NewPostgresStoreFromURL(dsn)
	}
}
