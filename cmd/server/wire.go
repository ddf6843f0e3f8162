//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/ogonki/streak-api/internal/config"
	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
	"github.com/ogonki/streak-api/internal/infrastructure/dedup"
	"github.com/ogonki/streak-api/internal/infrastructure/logger"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/streakrepo"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/userrepo"
	"github.com/ogonki/streak-api/internal/infrastructure/telegram"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
)

var repositorySet = wire.NewSet(
	transaction.NewDatabase,
	wire.Bind(new(bot.Sessions), new(*transaction.Database)),
	userrepo.NewUserGormRepository,
	streakrepo.NewStreakGormRepository,
)

var botSet = wire.NewSet(
	telemetry.NewSanitizerFromConfig,
	telegram.NewSender,
	bot.NewService,
)

// BuildApplication assembles the same graph as main with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newReadinessCheck,
		repositorySet,
		botSet,
		dedup.New,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
