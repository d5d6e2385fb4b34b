package snapshot

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emberlabs/snapmetrics/internal/domain"
	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
	"github.com/emberlabs/snapmetrics/internal/storage"
)

// Downloader is the slice of the object store the builder needs.
type Downloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// Resolver locates a canonical filename for an identity triple.
type Resolver interface {
	Locate(ctx context.Context, accountID string, uploadID *string, snapshotID, filename string) (domain.BlobLocation, error)
}

// SnapshotUpdater persists the post-aggregation snapshot mutation.
type SnapshotUpdater interface {
	SetLastEmailDate(ctx context.Context, snapshotID string, d time.Time) error
}

// Builder runs the snapshot pipeline: resolve the three canonical files,
// download them concurrently, assemble, cache. Stateless across requests;
// duplicate concurrent builds of the same snapshot are wasteful but safe.
type Builder struct {
	locator   Resolver
	store     Downloader
	cache     *Cache
	snapshots SnapshotUpdater
	now       func() time.Time
}

// NewBuilder wires a build pipeline. cache and snapshots may be nil.
func NewBuilder(locator Resolver, store Downloader, cache *Cache, snapshots SnapshotUpdater) *Builder {
	return &Builder{locator: locator, store: store, cache: cache, snapshots: snapshots, now: time.Now}
}

// Build returns the snapshot document for the given identity, from cache
// when possible. A single unlocatable file degrades to empty input; when
// all three canonical files are unlocatable the build fails with
// storage.ErrNotFound.
func (b *Builder) Build(ctx context.Context, id Identity) (*Document, error) {
	if doc := b.cache.Get(ctx, id.SnapshotID); doc != nil {
		return doc, nil
	}

	var files RawFiles
	targets := []struct {
		filename string
		dst      *string
	}{
		{FileCampaigns, &files.Campaigns},
		{FileFlows, &files.Flows},
		{FileSubscribers, &files.Subscribers},
	}
	located := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			text, err := b.fetch(gctx, id, target.filename)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					logger.Debug("builder: canonical file missing",
						"snapshot_id", id.SnapshotID, "file", target.filename)
					return nil
				}
				return err
			}
			*target.dst = text
			located[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	any := false
	for _, ok := range located {
		any = any || ok
	}
	if !any {
		return nil, storage.ErrNotFound
	}

	doc, diags := Assemble(id, files, b.now())
	for _, d := range diags {
		logger.Warn("builder: data quality issue", "snapshot_id", id.SnapshotID, "detail", d.String())
	}

	if b.snapshots != nil {
		if last, ok := doc.LastEmailDate(); ok {
			if err := b.snapshots.SetLastEmailDate(ctx, id.SnapshotID, last); err != nil {
				logger.Warn("builder: last_email_date update failed",
					"snapshot_id", id.SnapshotID, "error", err)
			}
		}
	}

	b.cache.Set(ctx, doc)
	return doc, nil
}

// Fetch resolves and downloads one canonical file for direct CSV serving.
func (b *Builder) Fetch(ctx context.Context, id Identity, filename string) ([]byte, error) {
	loc, err := b.locator.Locate(ctx, id.AccountID, id.UploadID, id.SnapshotID, filename)
	if err != nil {
		return nil, err
	}
	return b.store.Download(ctx, loc.Bucket, loc.Path)
}

func (b *Builder) fetch(ctx context.Context, id Identity, filename string) (string, error) {
	data, err := b.Fetch(ctx, id, filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
