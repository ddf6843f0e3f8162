package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ogonki/streak-api/internal/config"
	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/database"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
	"github.com/ogonki/streak-api/internal/infrastructure/dedup"
	"github.com/ogonki/streak-api/internal/infrastructure/logger"
	"github.com/ogonki/streak-api/internal/infrastructure/observability"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/streakrepo"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/userrepo"
	"github.com/ogonki/streak-api/internal/infrastructure/telegram"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
)

// @title Streak API
// @version 1.0
// @description Telegram webhook for pairwise streaks
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start blocks until the HTTP server stops.
func (a *Application) Start(ctx context.Context) error {
	a.log.Info().Msg("streak-api starting")
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("streak-api stopped")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("streak-api exited cleanly")
}

// run owns every resource of the process and releases them in reverse order.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn().Err(err).Msg("flush telemetry")
		}
	}()

	db, err := newGormDB(ctx, newDatabaseConfig(cfg), cfg, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	deduper, err := dedup.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("update de-duplication: %w", err)
	}
	defer deduper.Close()

	sanitizer := telemetry.NewSanitizerFromConfig(cfg)
	sessions := transaction.NewDatabase(db)
	botService := bot.NewService(
		sessions,
		userrepo.NewUserGormRepository(sessions),
		streakrepo.NewStreakGormRepository(sessions),
		telegram.NewSender(cfg, sanitizer, log),
		log,
	)

	app := NewApplication(
		httpserver.New(cfg, log, handlers.NewProvider(botService, deduper, sanitizer, log), newReadinessCheck(db)),
		log,
	)
	return app.Start(ctx)
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
		ConnectAttempts: cfg.DBConnectAttempts,
		RetryDelay:      cfg.DBRetryDelay,
	}
}

func newGormDB(ctx context.Context, dbCfg database.Config, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Open(ctx, dbCfg, log)
	if err != nil {
		return nil, err
	}
	if !cfg.DBAutoMigrate {
		log.Info().Msg("DB_AUTO_MIGRATE disabled, skipping migrations")
		return db, nil
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func newReadinessCheck(db *gorm.DB) httpserver.ReadinessCheck {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
