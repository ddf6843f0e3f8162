package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLSTATE raised by CREATE DATABASE when another replica won the race.
const duplicateDatabase = "42P04"

// Config describes the Postgres pool shared by webhook requests.
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel

	// ConnectAttempts bounds the startup pings while Postgres is still booting.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// Open creates the target database if needed, opens the pool and waits until
// it answers a ping.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("database DSN is empty")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Warn
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = 1
	}

	if err := createDatabase(ctx, cfg.DSN, log); err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := waitReady(ctx, sqlDB, cfg, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func waitReady(ctx context.Context, sqlDB *sql.DB, cfg Config, log zerolog.Logger) error {
	var err error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == cfg.ConnectAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", cfg.RetryDelay).Msg("database not ready")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", cfg.ConnectAttempts, err)
}

// Ping reports whether the pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("retrieve sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createDatabase issues CREATE DATABASE through the maintenance database when
// the DSN names one that does not exist yet. key=value DSNs are skipped.
func createDatabase(ctx context.Context, dsn string, log zerolog.Logger) error {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return nil
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" || name == "postgres" {
		return nil
	}

	maintenance := *u
	maintenance.Path = "/postgres"
	admin, err := sql.Open("postgres", maintenance.String())
	if err != nil {
		return err
	}
	defer admin.Close()

	var found int
	err = admin.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&found)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		// no access to the maintenance db; let the real connection report problems
		log.Debug().Err(err).Msg("skip database bootstrap")
		return nil
	}

	_, err = admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == duplicateDatabase {
		return nil
	}
	if err == nil {
		log.Info().Str("database", name).Msg("database created")
	}
	return err
}
