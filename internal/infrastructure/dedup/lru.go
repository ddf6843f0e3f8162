package dedup

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// LRUDeduper keeps claims in memory. Claims expire after ttl or when evicted
// by newer ones, whichever comes first.
type LRUDeduper struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
}

func NewLRUDeduper(size int, ttl time.Duration) (*LRUDeduper, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUDeduper{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (d *LRUDeduper) Claim(_ context.Context, updateID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	k := key(updateID)
	if v, ok := d.cache.Get(k); ok {
		if expires, _ := v.(time.Time); now.Before(expires) {
			return false, nil
		}
	}
	d.cache.Add(k, now.Add(d.ttl))
	return true, nil
}

func (d *LRUDeduper) Release(_ context.Context, updateID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache.Remove(key(updateID))
	return nil
}

func (d *LRUDeduper) Close() error {
	d.cache.Purge()
	return nil
}
