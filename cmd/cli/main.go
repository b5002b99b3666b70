package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hudsondigital/hds-platform/config"
	"github.com/hudsondigital/hds-platform/domain"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/pkg/migrations"
	"github.com/hudsondigital/hds-platform/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		os.Exit(runMigrate(logger))

	case "migrate-version":
		os.Exit(runMigrateVersion(logger))

	case "process-emails":
		os.Exit(runProcessEmails(logger))

	case "aggregate-analytics":
		day := time.Now().UTC().AddDate(0, 0, -1)
		if len(args) > 1 {
			parsed, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid date %q, expected YYYY-MM-DD\n", args[1])
				os.Exit(1)
			}
			day = parsed
		}
		os.Exit(runAggregateAnalytics(logger, day))

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func migrationsConfig(logger *log.Logger) migrations.Config {
	return migrations.Config{
		Dir:    utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations"),
		Logger: logger,
	}
}

func runMigrate(logger *log.Logger) int {
	db, err := config.NewDatabase(logger, &config.DBConfig{})
	if err != nil {
		logger.Error("Failed to connect to database for migration", "error", err.Error())
		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance for migration", "error", err.Error())
		return 1
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB, migrationsConfig(logger)); err != nil {
		logger.Error("Database migration failed", "error", err.Error())
		return 1
	}

	logger.Info("Database migrations completed")
	return 0
}

func runMigrateVersion(logger *log.Logger) int {
	db, err := config.NewDatabase(logger, &config.DBConfig{})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err.Error())
		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err.Error())
		return 1
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	version, dirty, err := migrations.Version(ctx, sqlDB, migrationsConfig(logger))
	if err != nil {
		logger.Error("Failed to read migration version", "error", err.Error())
		return 1
	}

	fmt.Printf("version=%d dirty=%t\n", version, dirty)
	return 0
}

func loadServices(logger *log.Logger) (*config.ApplicationConfig, *domain.Services, bool) {
	appConfig, err := config.LoadDatabaseOnly(logger)
	if err != nil {
		logger.Error("Failed to load database configuration", "error", err.Error())
		return nil, nil, false
	}
	return appConfig, domain.BuildServices(appConfig), true
}

func runProcessEmails(logger *log.Logger) int {
	appConfig, services, ok := loadServices(logger)
	if !ok {
		return 1
	}
	defer appConfig.Cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := services.Sequences.ProcessDue(ctx, time.Now().UTC(), appConfig.Integrations.EmailBatchSize)
	if err != nil {
		logger.Error("Processing scheduled emails failed", "error", err.Error())
		return 1
	}

	logger.Info("Scheduled emails processed",
		"processed", result.Processed,
		"sent", result.Sent,
		"failed", result.Failed,
		"completed", result.Completed,
		"cancelled", result.Cancelled,
	)
	return 0
}

func runAggregateAnalytics(logger *log.Logger, day time.Time) int {
	appConfig, services, ok := loadServices(logger)
	if !ok {
		return 1
	}
	defer appConfig.Cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := services.Analytics.Aggregate(ctx, day)
	if err != nil {
		logger.Error("Analytics aggregation failed", "date", day.Format("2006-01-02"), "error", err.Error())
		return 1
	}

	logger.Info("Analytics aggregated", "date", result.Date, "metrics", len(result.Metrics))
	return 0
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate                          Run database migrations and exit")
	fmt.Println("  migrate-version                  Print the applied migration version")
	fmt.Println("  process-emails                   Send due email sequence steps once")
	fmt.Println("  aggregate-analytics [YYYY-MM-DD] Roll up daily metrics (defaults to yesterday)")
}
