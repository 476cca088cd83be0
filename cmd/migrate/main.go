package main

import (
	"errors"
	"flag"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/liamcoop/ui5helper/internal/config"
	"github.com/liamcoop/ui5helper/internal/logger"
)

func main() {
	var cfg config.Server
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	var command string
	flag.StringVar(&cfg.DatabaseURL, "database", cfg.DatabaseURL, "Database URL (defaults to DATABASE_URL)")
	flag.StringVar(&cfg.MigrationsPath, "path", cfg.MigrationsPath, "Migrations source URL (defaults to MIGRATIONS_PATH)")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, version, force")
	flag.Parse()

	if err := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "text", SampleRate: 1}); err != nil {
		logger.Fatal("failed to configure logger", "error", err)
	}

	if !cfg.UsesDatabase() {
		logger.Fatal("database URL is required, use -database or DATABASE_URL")
	}

	logger.Info("connecting to database", "migrations", cfg.MigrationsPath)

	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create migration instance", "error", err)
	}
	defer m.Close()

	switch command {
	case "up":
		logger.Info("running migrations up")
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to run, database is up to date")
			return
		}
		if err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}
		logger.Info("migrations completed")

	case "down":
		logger.Info("rolling back migrations")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("failed to roll back migrations", "error", err)
		}
		logger.Info("rollback completed")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logger.Fatal("failed to get version", "error", err)
		}
		logger.Info("current version", "version", version, "dirty", dirty)

	case "force":
		if flag.NArg() < 1 {
			logger.Fatal("force requires a version number: -command force <version>")
		}
		version, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			logger.Fatal("invalid version number", "error", err)
		}
		if err := m.Force(version); err != nil {
			logger.Fatal("failed to force version", "error", err)
		}
		logger.Info("forced version", "version", version)

	default:
		logger.Fatal("unknown command, use up, down, version or force", "command", command)
	}
}
