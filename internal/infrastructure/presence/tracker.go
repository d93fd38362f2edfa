package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"valluvarvaasal/pkg/logger"
)

// Tracker keeps a TTL'd online marker per user in Redis. Socket heartbeats
// refresh it; the marker lapsing means the user went away without a clean
// disconnect. Lookups are best-effort: a Redis failure reads as offline,
// which at worst produces a redundant notification.
type Tracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTracker(rdb *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{
		rdb: rdb,
		ttl: ttl,
	}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (t *Tracker) Heartbeat(ctx context.Context, userID string) {
	if err := t.rdb.Set(ctx, presenceKey(userID), "1", t.ttl).Err(); err != nil {
		logger.Warn("Presence heartbeat for %s failed: %v", userID, err)
	}
}

func (t *Tracker) Offline(ctx context.Context, userID string) {
	if err := t.rdb.Del(ctx, presenceKey(userID)).Err(); err != nil {
		logger.Warn("Presence clear for %s failed: %v", userID, err)
	}
}

func (t *Tracker) IsOnline(ctx context.Context, userID string) bool {
	n, err := t.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		logger.Warn("Presence lookup for %s failed: %v", userID, err)
		return false
	}
	return n > 0
}
