// Package dedup remembers which Telegram updates are already being handled,
// so webhook redeliveries do not run a command twice.
package dedup

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ogonki/streak-api/internal/config"
)

const keyPrefix = "streak-api:update:"

// Deduper claims update ids for processing.
type Deduper interface {
	// Claim returns false when the update was already claimed and has not
	// been released.
	Claim(ctx context.Context, updateID int64) (bool, error)
	// Release forgets a claim so a redelivery is processed again.
	Release(ctx context.Context, updateID int64) error
	Close() error
}

// New picks Redis when REDIS_URL is set and the in-process cache otherwise.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Deduper, error) {
	if cfg.RedisURL != "" {
		d, err := NewRedisDeduper(ctx, cfg.RedisURL, cfg.DedupTTL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("update de-duplication backed by redis")
		return d, nil
	}

	d, err := NewLRUDeduper(cfg.DedupCacheSize, cfg.DedupTTL)
	if err != nil {
		return nil, err
	}
	log.Info().Int("size", cfg.DedupCacheSize).Msg("update de-duplication backed by in-process cache")
	return d, nil
}

func key(updateID int64) string {
	return keyPrefix + strconv.FormatInt(updateID, 10)
}
