package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	assert.Nil(t, cache.Get(ctx, "s1"))

	doc, _ := Assemble(testIdentity(), RawFiles{Campaigns: campaignsCSV}, testNow)
	cache.Set(ctx, doc)

	got := cache.Get(ctx, "s1")
	require.NotNil(t, got)
	assert.Equal(t, doc.Meta.SnapshotID, got.Meta.SnapshotID)
	assert.Equal(t, doc.Meta.DateRange, got.Meta.DateRange)
	require.NotNil(t, got.Email)
	assert.Equal(t, doc.Email.Totals, got.Email.Totals)
}

func TestCacheTTL(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	doc, _ := Assemble(testIdentity(), RawFiles{Campaigns: campaignsCSV}, testNow)
	cache.Set(ctx, doc)

	mr.FastForward(2 * time.Minute)
	assert.Nil(t, cache.Get(ctx, "s1"))
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	doc, _ := Assemble(testIdentity(), RawFiles{Campaigns: campaignsCSV}, testNow)
	cache.Set(ctx, doc)
	cache.Invalidate(ctx, "s1")
	assert.Nil(t, cache.Get(ctx, "s1"))
}

func TestCacheCorruptEntryDropped(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("snapshot:doc:s1", "{not json"))
	assert.Nil(t, cache.Get(ctx, "s1"))
	// The bad entry is removed so the next build can repopulate cleanly.
	assert.False(t, mr.Exists("snapshot:doc:s1"))
}

func TestCacheNilClientDisabled(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	doc, _ := Assemble(testIdentity(), RawFiles{}, testNow)
	cache.Set(ctx, doc)
	assert.Nil(t, cache.Get(ctx, "s1"))
	cache.Invalidate(ctx, "s1")
}
