package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps the per-user latest-record projection in Redis so
// the pricer does not refold the whole purchase history on every call.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache instantiates the cache helper.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(userID int64) string {
	return fmt.Sprintf("ledger:snapshot:%d", userID)
}

// Fetch loads the cached projection or populates it with the loader.
func (c *SnapshotCache) Fetch(ctx context.Context, userID int64, loader func(context.Context) (map[string]PurchaseRecord, error)) (map[string]PurchaseRecord, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := snapshotKey(userID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot map[string]PurchaseRecord
		if err := json.Unmarshal(payload, &snapshot); err == nil {
			return snapshot, nil
		}
		// Corrupt entry: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	snapshot, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(snapshot); err == nil {
		_ = c.client.Set(ctx, key, encoded, c.ttl).Err()
	}
	return snapshot, nil
}

// Invalidate drops the cached projection after a ledger write.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey(userID)).Err()
}
