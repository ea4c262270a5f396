package persistence

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded SQL migrations to the database at dsn.
func RunMigrations(dsn string, logger *zap.Logger) error {
	if dsn == "" {
		logger.Warn("no postgres DSN available; skipping migrations")
		return nil
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logMigrationVersion(logger, m)
	return nil
}

type versioner interface {
	Version() (version uint, dirty bool, err error)
}

func logMigrationVersion(logger *zap.Logger, v versioner) {
	version, dirty, err := v.Version()
	if err != nil {
		logger.Warn("migrations applied; schema version unavailable", zap.Error(err))
		return
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

// migrateURL rewrites a postgres:// URL to the scheme of golang-migrate's pgx v5 driver.
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}
