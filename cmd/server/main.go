package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hudsondigital/hds-platform/config"
	"github.com/hudsondigital/hds-platform/domain"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/scheduler"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	logger.Info("HDS platform server initialized")

	autoMigrate := false

	for _, arg := range os.Args[1:] {
		if strings.ToLower(arg) == "--auto-migrate" || strings.ToLower(arg) == "-m" {
			autoMigrate = true
			break
		}
	}

	appConfig, err := config.LoadApplicationConfiguration(logger, autoMigrate)
	if err != nil {
		logger.Error("Failed to load application configuration", "error", err.Error())
		os.Exit(1)
	}

	services := domain.SetupCoreDomain(appConfig)

	var jobs *scheduler.Scheduler
	if appConfig.Integrations.SchedulerEnabled {
		jobs = scheduler.New(logger)
		for _, job := range domain.ScheduledJobs(services, appConfig.Integrations) {
			if err := jobs.Register(job); err != nil {
				logger.Error("Failed to register scheduled job", "job", job.Name, "error", err.Error())
				appConfig.Cleanup()
				os.Exit(1)
			}
		}
		jobs.Start()
	} else {
		logger.Info("In-process scheduler disabled; cron endpoints must be triggered externally")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...")
		if err := appConfig.RouterService.RunHTTPServer(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("Server error", "error", err)
		appConfig.Cleanup()
		os.Exit(1)
	case <-quit:
		logger.Info("Shutdown signal received, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if jobs != nil {
			if err := jobs.Stop(shutdownCtx); err != nil {
				logger.Warn("Scheduler shutdown error", "error", err)
			}
		}

		if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		} else {
			logger.Info("HTTP server shut down gracefully")
		}
		appConfig.Cleanup()

		logger.Info("Graceful shutdown completed")
	}
}
