package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ObjectStore keyed by bucket/key.
type fakeStore struct {
	objects map[string]string // "bucket/key" -> body
	failAll bool              // every call errors (transient outage)
}

func newFakeStore(keys map[string][]string) *fakeStore {
	s := &fakeStore{objects: make(map[string]string)}
	for bucket, ks := range keys {
		for _, k := range ks {
			s.objects[bucket+"/"+k] = "body:" + k
		}
	}
	return s
}

func (s *fakeStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if s.failAll {
		return false, errors.New("store unavailable")
	}
	_, ok := s.objects[bucket+"/"+key]
	return ok, nil
}

func (s *fakeStore) ListDirs(ctx context.Context, bucket, prefix string) ([]string, error) {
	if s.failAll {
		return nil, errors.New("store unavailable")
	}
	seen := make(map[string]bool)
	for full := range s.objects {
		if !strings.HasPrefix(full, bucket+"/") {
			continue
		}
		key := strings.TrimPrefix(full, bucket+"/")
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i > 0 {
			seen[rest[:i]] = true
		}
	}
	var dirs []string
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *fakeStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	body, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(body), nil
}

// fakeIndex answers metadata pattern searches from a canned map.
type fakeIndex struct {
	hits map[string][]string // pattern -> paths
}

func (f *fakeIndex) Search(ctx context.Context, bucket, pattern string) ([]string, error) {
	return f.hits[pattern], nil
}

func strp(s string) *string { return &s }

func TestLocateExactUploadPath(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"a1/u1/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "uploads", loc.Bucket)
	assert.Equal(t, "a1/u1/campaigns.csv", loc.Path)
}

func TestLocateFallsBackToSnapshotFolder(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"a1/s1/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	// upload folder is empty; the snapshot-id folder still resolves
	loc, err := l.Locate(context.Background(), "a1", strp("u-missing"), "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "a1/s1/campaigns.csv", loc.Path)
}

func TestLocateNilUploadID(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"a1/s1/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "a1/s1/campaigns.csv", loc.Path)
}

func TestLocateAccountSubdirScan(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"a1/some-old-folder/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "a1/some-old-folder/campaigns.csv", loc.Path)
}

func TestLocateRootSnapshotScan(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"legacy-root/s1/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "legacy-root/s1/campaigns.csv", loc.Path)
}

func TestLocateRootDirectScan(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {"flat-dir/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "flat-dir/campaigns.csv", loc.Path)
}

func TestLocatePrefersExactOverScan(t *testing.T) {
	// Both an exact path and a scannable legacy path exist; the exact
	// parent wins because it runs first.
	store := newFakeStore(map[string][]string{
		"uploads": {
			"a1/u1/campaigns.csv",
			"legacy/s1/campaigns.csv",
		},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "a1/u1/campaigns.csv", loc.Path)
}

func TestLocateBucketPriority(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"primary":  {"a1/u1/campaigns.csv"},
		"fallback": {"a1/u1/campaigns.csv"},
	})
	l := NewLocator(store, nil, []string{"primary", "fallback"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "primary", loc.Bucket)
}

func TestLocateMetadataSearch(t *testing.T) {
	store := newFakeStore(nil)
	index := &fakeIndex{hits: map[string][]string{
		"%/s1/%campaigns.csv": {"deep/nested/s1/export-campaigns.csv"},
	}}
	l := NewLocator(store, index, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "deep/nested/s1/export-campaigns.csv", loc.Path)
}

func TestLocateGlobalMetadataDisambiguation(t *testing.T) {
	store := newFakeStore(nil)
	index := &fakeIndex{hits: map[string][]string{
		"%/campaigns.csv": {
			"other/x9/campaigns.csv",
			"stray/s1/campaigns.csv",
		},
	}}
	l := NewLocator(store, index, []string{"uploads"}, time.Second)

	loc, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	assert.Equal(t, "stray/s1/campaigns.csv", loc.Path)
}

func TestLocateExhaustedReturnsNotFound(t *testing.T) {
	store := newFakeStore(nil)
	l := NewLocator(store, &fakeIndex{}, []string{"uploads"}, time.Second)

	_, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateTransientFailureIsMiss(t *testing.T) {
	store := newFakeStore(nil)
	store.failAll = true
	l := NewLocator(store, &fakeIndex{}, []string{"uploads"}, time.Second)

	_, err := l.Locate(context.Background(), "a1", strp("u1"), "s1", "campaigns.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateIdempotent(t *testing.T) {
	store := newFakeStore(map[string][]string{
		"uploads": {
			"a1/old-a/campaigns.csv",
			"a1/old-b/campaigns.csv",
		},
	})
	l := NewLocator(store, nil, []string{"uploads"}, time.Second)

	first, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := l.Locate(context.Background(), "a1", nil, "s1", "campaigns.csv")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPickBestHit(t *testing.T) {
	hits := []string{"z/1.csv", "a1/2.csv", "x/s1/3.csv"}
	assert.Equal(t, "x/s1/3.csv", pickBestHit(hits, "a1", "s1"))
	assert.Equal(t, "a1/2.csv", pickBestHit(hits[:2], "a1", "s1"))
	assert.Equal(t, "z/1.csv", pickBestHit(hits[:1], "a1", "s1"))
	assert.Equal(t, "", pickBestHit(nil, "a1", "s1"))
}
