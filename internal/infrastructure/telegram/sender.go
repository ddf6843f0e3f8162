package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ogonki/streak-api/internal/config"
	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/metrics"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
)

// NopSender drops messages. It stands in for the client when no bot token
// is configured.
type NopSender struct {
	log       zerolog.Logger
	sanitizer *telemetry.Sanitizer
}

func (s NopSender) SendMessage(_ context.Context, msg bot.OutgoingMessage) error {
	metrics.RecordOutbound("skipped", 0)
	s.log.Debug().
		Str("chat", s.sanitizer.SanitizeUserID(msg.ChatID)).
		Msg("bot token not configured, message skipped")
	return nil
}

// NewSender returns the Bot API client, or a NopSender when the token is empty.
func NewSender(cfg *config.Config, sanitizer *telemetry.Sanitizer, log zerolog.Logger) bot.Sender {
	log = log.With().Str("component", "telegram").Logger()
	if !cfg.TelegramEnabled() {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, outbound messages are disabled")
		return NopSender{log: log, sanitizer: sanitizer}
	}
	return NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramTimeout)
}
