package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Cache stores built snapshot documents in Redis, keyed by snapshot id.
// The document is always rebuildable from the source CSVs, so every cache
// path is best-effort: a Redis failure degrades to a rebuild, never an
// error for the caller.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a snapshot cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(snapshotID string) string { return "snapshot:doc:" + snapshotID }

// Get returns the cached document, or nil on miss or any Redis failure.
func (c *Cache) Get(ctx context.Context, snapshotID string) *Document {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := c.client.Get(ctx, cacheKey(snapshotID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("snapshot cache: get failed", "snapshot_id", snapshotID, "error", err)
		}
		return nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("snapshot cache: corrupt entry dropped", "snapshot_id", snapshotID, "error", err)
		c.Invalidate(ctx, snapshotID)
		return nil
	}
	return &doc
}

// Set stores a document, best-effort.
func (c *Cache) Set(ctx context.Context, doc *Document) {
	if c == nil || c.client == nil || doc == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Warn("snapshot cache: marshal failed", "snapshot_id", doc.Meta.SnapshotID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(doc.Meta.SnapshotID), data, c.ttl).Err(); err != nil {
		logger.Warn("snapshot cache: set failed", "snapshot_id", doc.Meta.SnapshotID, "error", err)
	}
}

// Invalidate drops a cached document, best-effort.
func (c *Cache) Invalidate(ctx context.Context, snapshotID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(snapshotID)).Err(); err != nil {
		logger.Warn("snapshot cache: del failed", "snapshot_id", snapshotID, "error", err)
	}
}
