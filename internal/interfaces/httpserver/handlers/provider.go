package handlers

import (
	"github.com/rs/zerolog"

	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/dedup"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Telegram *TelegramHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(botService bot.Service, deduper dedup.Deduper, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *Provider {
	return &Provider{
		Telegram: NewTelegramHandler(botService, deduper, sanitizer, log),
	}
}
