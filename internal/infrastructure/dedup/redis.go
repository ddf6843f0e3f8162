package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Deletes the claim only while this replica still owns it, so a late release
// cannot drop a claim another replica took after the TTL ran out.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDeduper shares claims between replicas with SET NX.
type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
	owner  string
}

// NewRedisDeduper connects to redisURL: one redis:// URL, or a comma
// separated list of host:port cluster nodes.
func NewRedisDeduper(ctx context.Context, redisURL string, ttl time.Duration) (*RedisDeduper, error) {
	opts, err := redisOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client, err := dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &RedisDeduper{client: client, ttl: ttl, owner: uuid.NewString()}, nil
}

func dial(ctx context.Context, opts *redis.UniversalOptions) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func (d *RedisDeduper) Claim(ctx context.Context, updateID int64) (bool, error) {
	ok, err := d.client.SetNX(ctx, key(updateID), d.owner, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim update %d: %w", updateID, err)
	}
	return ok, nil
}

func (d *RedisDeduper) Release(ctx context.Context, updateID int64) error {
	err := releaseScript.Run(ctx, d.client, []string{key(updateID)}, d.owner).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release update %d: %w", updateID, err)
	}
	return nil
}

func (d *RedisDeduper) Close() error {
	return d.client.Close()
}

func redisOptions(raw string) (*redis.UniversalOptions, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, err
		}
		return &redis.UniversalOptions{
			Addrs:     []string{parsed.Addr},
			Username:  parsed.Username,
			Password:  parsed.Password,
			DB:        parsed.DB,
			TLSConfig: parsed.TLSConfig,
		}, nil
	}

	var addrs []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("no redis addresses provided")
	}
	// cluster mode has no database index
	return &redis.UniversalOptions{Addrs: addrs}, nil
}
