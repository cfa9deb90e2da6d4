package billing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupeTTL is how long a processed event id is remembered.
const DedupeTTL = 24 * time.Hour

// Deduper remembers webhook event ids in Redis.  A nil client disables it
// and every event counts as new.
type Deduper struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDeduper(rdb *redis.Client) *Deduper {
	return &Deduper{rdb: rdb, prefix: "webhook:event:", ttl: DedupeTTL}
}

// Claim marks id as being processed.  It returns false when the id was
// already claimed.
func (d *Deduper) Claim(ctx context.Context, id string) (bool, error) {
	if d == nil || d.rdb == nil {
		return true, nil
	}
	return d.rdb.SetNX(ctx, d.prefix+id, time.Now().UTC().Unix(), d.ttl).Result()
}

// Release forgets id so a provider retry is processed again.
func (d *Deduper) Release(ctx context.Context, id string) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	return d.rdb.Del(ctx, d.prefix+id).Err()
}
