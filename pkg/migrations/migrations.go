package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
}

var migratorFactory = func(sourceURL string, driver database.Driver) (migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Config struct {
	Dir             string
	MigrationsTable string
	Logger          Logger
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "migrations"
	}
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = "schema_migrations"
	}
}

func (cfg Config) info(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Info(msg, args...)
	}
}

func (cfg Config) warn(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Warn(msg, args...)
	}
}

// sourceURLFor builds a file:// URL with forward slashes and proper escaping.
func sourceURLFor(dir string) (string, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("migrations: resolve dir: %w", err)
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(absDir)}).String(), absDir, nil
}

type session struct {
	m     migrator
	close func()
}

func open(ctx context.Context, db *sql.DB, cfg Config) (*session, string, error) {
	if db == nil {
		return nil, "", fmt.Errorf("migrations: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	sourceURL, absDir, err := sourceURLFor(cfg.Dir)
	if err != nil {
		return nil, "", err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("migrations: postgres driver: %w", err)
	}

	m, err := migratorFactory(sourceURL, driver)
	if err != nil {
		return nil, "", fmt.Errorf("migrations: init: %w", err)
	}

	var once sync.Once
	return &session{
		m: m,
		close: func() {
			once.Do(func() {
				srcErr, dbErr := m.Close()
				if srcErr != nil {
					cfg.warn("Migrations source close error", "error", srcErr)
				}
				if dbErr != nil {
					cfg.warn("Migrations db close error", "error", dbErr)
				}
			})
		},
	}, absDir, nil
}

// Up applies every pending migration. ErrNoChange is not an error.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	cfg.applyDefaults()

	s, absDir, err := open(ctx, db, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	cfg.info("Running SQL migrations", "dir", absDir, "table", cfg.MigrationsTable)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.m.Up()
	}()

	select {
	case <-ctx.Done():
		// migrate has no context support; closing interrupts it best-effort.
		s.close()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, migrate.ErrNoChange) {
			cfg.info("No migrations to apply")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrations: up: %w", err)
		}
	}

	cfg.info("Migrations applied successfully")
	return nil
}

// Version reports the currently applied migration and whether it is dirty.
// A database without any applied migration reports version 0.
func Version(ctx context.Context, db *sql.DB, cfg Config) (uint, bool, error) {
	cfg.applyDefaults()

	s, _, err := open(ctx, db, cfg)
	if err != nil {
		return 0, false, err
	}
	defer s.close()

	version, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrations: version: %w", err)
	}

	return version, dirty, nil
}
