package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/config"
	"github.com/mkajic20/smart-charger-backend/internal/db"
	"github.com/mkajic20/smart-charger-backend/internal/logging"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
	"github.com/mkajic20/smart-charger-backend/internal/seed"
)

const defaultSeedFile = "seed.yaml"

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting seed")

	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = defaultSeedFile
	}
	data, err := seed.Load(path)
	if err != nil {
		logger.Fatal("load seed data", zap.String("path", path), zap.Error(err))
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		data.Admin.Email = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		data.Admin.Password = v
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	// Roles are seeded by the migration.
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	report, err := seed.Run(context.Background(), repository.NewStore(gormDB), auth.NewBcryptHasher(0), data)
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	logger.Info("seed completed",
		zap.Bool("admin_created", report.AdminCreated),
		zap.Int("chargers_created", report.ChargersCreated),
		zap.Int("chargers_updated", report.ChargersUpdated))
}
