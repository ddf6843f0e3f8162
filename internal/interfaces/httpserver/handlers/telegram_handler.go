package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/domain/user"
	"github.com/ogonki/streak-api/internal/infrastructure/dedup"
	"github.com/ogonki/streak-api/internal/infrastructure/metrics"
	"github.com/ogonki/streak-api/internal/infrastructure/telegram"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
)

// Update outcomes, as reported in streaks_streak_api_updates_total.
const (
	outcomeProcessed = "processed"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// TelegramHandler turns webhook updates into bot events.
type TelegramHandler struct {
	service   bot.Service
	deduper   dedup.Deduper
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

// NewTelegramHandler wires dependencies for the webhook route. deduper may be nil.
func NewTelegramHandler(service bot.Service, deduper dedup.Deduper, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *TelegramHandler {
	return &TelegramHandler{
		service:   service,
		deduper:   deduper,
		sanitizer: sanitizer,
		log:       log.With().Str("component", "telegram_webhook").Logger(),
	}
}

// HandleUpdate processes one update. Updates without a text-capable message
// and redeliveries are acknowledged without side effects.
func (h *TelegramHandler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		metrics.RecordUpdate(outcomeIgnored)
		return nil
	}

	process, claimed := h.claim(ctx, update.UpdateID)
	if !process {
		metrics.RecordUpdate(outcomeDuplicate)
		h.log.Debug().Int64("update_id", update.UpdateID).Msg("duplicate update skipped")
		return nil
	}

	result, err := h.service.HandleEvent(ctx, bot.Event{
		UpdateID: update.UpdateID,
		ChatID:   msg.Chat.ID,
		From: user.Profile{
			TelegramID: msg.From.ID,
			Username:   msg.From.Username,
			FirstName:  msg.From.FirstName,
			LastName:   msg.From.LastName,
		},
		Text: msg.Text,
	})

	logEvent := h.log.Debug()
	if err != nil {
		logEvent = h.log.Error().Err(err)
	}
	logEvent.
		Int64("update_id", update.UpdateID).
		Str("user", h.sanitizer.SanitizeUserID(msg.From.ID)).
		Str("handle", h.sanitizer.SanitizeHandle(msg.From.Username)).
		Str("text", h.sanitizer.SanitizeText(msg.Text)).
		Str("command", result.Command.String()).
		Int("sent", result.Sent).
		Int("send_failed", result.Failed).
		Msg("update handled")

	if err != nil {
		metrics.RecordCommand(result.Command.String(), "error")
		metrics.RecordUpdate(outcomeFailed)
		if claimed {
			h.release(ctx, update.UpdateID)
		}
		return err
	}

	metrics.RecordCommand(result.Command.String(), "ok")
	metrics.RecordUpdate(outcomeProcessed)
	return nil
}

// claim reports whether this delivery should be processed and whether a
// claim is held for it. Updates without an id are never de-duplicated and
// backend errors let the update through.
func (h *TelegramHandler) claim(ctx context.Context, updateID int64) (process, claimed bool) {
	if h.deduper == nil || updateID == 0 {
		return true, false
	}
	ok, err := h.deduper.Claim(ctx, updateID)
	if err != nil {
		h.log.Warn().Err(err).Int64("update_id", updateID).Msg("dedup claim failed, processing anyway")
		return true, false
	}
	return ok, ok
}

func (h *TelegramHandler) release(ctx context.Context, updateID int64) {
	if err := h.deduper.Release(context.WithoutCancel(ctx), updateID); err != nil {
		h.log.Warn().Err(err).Int64("update_id", updateID).Msg("dedup release failed")
	}
}
