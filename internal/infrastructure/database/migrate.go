package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	iofs "github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ogonki/streak-api/migrations"
)

const migrationsTable = "schema_migrations"

// Migrator applies the SQL files embedded in the migrations package. It holds
// one dedicated connection until Close.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// NewMigrator binds the embedded migrations to one connection of db.
func NewMigrator(ctx context.Context, db *gorm.DB, log zerolog.Logger) (*Migrator, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire migration connection: %w", err)
	}

	target, err := postgres.WithConnection(ctx, conn, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = target.Close()
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", target)
	if err != nil {
		_ = source.Close()
		_ = target.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, log: log.With().Str("component", "migrate").Logger()}, nil
}

// Version returns the applied version; 0 means nothing has been applied.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Up applies every pending migration. A dirty version left by a crashed run
// is forced clean first so the failed step is retried.
func (mg *Migrator) Up() error {
	version, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		mg.log.Warn().Uint("version", version).Msg("dirty migration state, forcing")
		if err := mg.m.Force(int(version)); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
	}

	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return mg.logVersion("schema up to date")
}

// Down rolls back n migrations.
func (mg *Migrator) Down(n int) error {
	if n <= 0 {
		return fmt.Errorf("steps must be positive, got %d", n)
	}
	if err := mg.m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back %d migrations: %w", n, err)
	}
	return mg.logVersion("migrations rolled back")
}

func (mg *Migrator) logVersion(msg string) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	mg.log.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
	return nil
}

// Close releases the source and the dedicated connection.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate applies all pending migrations on a short-lived Migrator.
func Migrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) (err error) {
	mg, err := NewMigrator(ctx, db, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := mg.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migrator: %w", closeErr)
		}
	}()
	return mg.Up()
}
