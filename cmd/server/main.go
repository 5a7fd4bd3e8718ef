package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/api"
	"github.com/aba-necessity-server/internal/cache"
	"github.com/aba-necessity-server/internal/config"
	"github.com/aba-necessity-server/internal/database"
	"github.com/aba-necessity-server/internal/domain"
	"github.com/aba-necessity-server/internal/repository"
	"github.com/aba-necessity-server/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		claimRepo   domain.ClaimRepository
		policyRepo  domain.PolicyRepository
		patientRepo domain.PatientRepository
		auditRepo   domain.AuditRepository
	)

	switch cfg.Storage.Driver {
	case "postgres":
		runner, err := database.NewMigrationRunner(
			database.URL(cfg.Database), cfg.Storage.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()

		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		claimRepo = repository.NewClaimRepository(db.Pool, logger)
		policyRepo = repository.NewPolicyRepository(db.Pool, logger)
		patientRepo = repository.NewPatientRepository(db.Pool, logger)
		auditRepo = repository.NewAuditRepository(db.Pool, logger)

	default: // sqlite
		store, err := repository.NewSQLiteStore(cfg.Storage.SQLitePath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open sqlite store")
		}
		defer store.Close()

		claimRepo = store
		policyRepo = store.Policies()
		patientRepo = store.Patients()
		auditRepo = store
	}

	cachedPolicies, err := cache.NewPolicyCache(policyRepo, cfg.Storage.PolicyCacheSize, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create policy cache")
	}

	claimService := service.NewClaimService(logger, claimRepo)
	analyticsService := service.NewAnalyticsService(logger, claimRepo)

	server := api.NewServer(
		cfg.Server,
		configManager.DefaultPolicy(),
		logger,
		claimService,
		analyticsService,
		cachedPolicies,
		patientRepo,
		auditRepo,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
