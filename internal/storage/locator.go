package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberlabs/snapmetrics/internal/domain"
	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
)

// ErrNotFound means the widening search exhausted every step in every bucket
// without locating the file. Callers surface this as a 404-class condition.
var ErrNotFound = errors.New("blob not found")

// Locator resolves a canonical filename to a concrete blob location. Upload
// paths have drifted across product iterations (folder-per-upload,
// folder-per-snapshot, flat layouts), so resolution is a widening search:
// a prioritized sequence of probes per bucket, each step cheaper/stricter
// than the next, stopping at the first hit.
//
// A transient store failure or timeout in one step is treated as a miss for
// that step only; the search continues. Locate is a pure function of its
// arguments and the storage state, so repeated calls return the same result.
type Locator struct {
	store       ObjectStore
	index       MetadataIndex
	buckets     []string
	stepTimeout time.Duration
}

// NewLocator builds a locator searching buckets in the given priority order.
func NewLocator(store ObjectStore, index MetadataIndex, buckets []string, stepTimeout time.Duration) *Locator {
	if stepTimeout <= 0 {
		stepTimeout = 5 * time.Second
	}
	return &Locator{store: store, index: index, buckets: buckets, stepTimeout: stepTimeout}
}

// step is one lazily-evaluated probe in the search chain. It returns the
// located path ("" for a miss) or an error, which the chain treats as a miss.
type step struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Locate finds filename for the given identifier triple. uploadID may be nil
// for snapshots created before uploads were modeled.
func (l *Locator) Locate(ctx context.Context, accountID string, uploadID *string, snapshotID, filename string) (domain.BlobLocation, error) {
	for _, bucket := range l.buckets {
		steps := l.steps(bucket, accountID, uploadID, snapshotID, filename)
		for _, s := range steps {
			stepCtx, cancel := context.WithTimeout(ctx, l.stepTimeout)
			path, err := s.run(stepCtx)
			cancel()

			if err != nil {
				// Transient miss: skip this step, keep widening
				logger.Debug("locator: step failed, continuing",
					"bucket", bucket, "step", s.name, "file", filename, "error", err)
				continue
			}
			if path != "" {
				logger.Debug("locator: resolved",
					"bucket", bucket, "step", s.name, "path", path)
				return domain.BlobLocation{Bucket: bucket, Path: path}, nil
			}
		}
	}

	logger.Info("locator: exhausted all steps",
		"account_id", accountID, "snapshot_id", snapshotID, "file", filename)
	return domain.BlobLocation{}, ErrNotFound
}

func (l *Locator) steps(bucket, accountID string, uploadID *string, snapshotID, filename string) []step {
	return []step{
		// A. Exact parents: {account}/{upload}/{file}, then {account}/{snapshot}/{file}
		{name: "exact-parents", run: func(ctx context.Context) (string, error) {
			if uploadID != nil && *uploadID != "" {
				key := fmt.Sprintf("%s/%s/%s", accountID, *uploadID, filename)
				ok, err := l.store.Exists(ctx, bucket, key)
				if err != nil {
					return "", err
				}
				if ok {
					return key, nil
				}
			}
			key := fmt.Sprintf("%s/%s/%s", accountID, snapshotID, filename)
			ok, err := l.store.Exists(ctx, bucket, key)
			if err != nil || !ok {
				return "", err
			}
			return key, nil
		}},

		// B. One-level scan of the account folder
		{name: "account-subdirs", run: func(ctx context.Context) (string, error) {
			dirs, err := l.store.ListDirs(ctx, bucket, accountID+"/")
			if err != nil {
				return "", err
			}
			for _, dir := range dirs {
				key := fmt.Sprintf("%s/%s/%s", accountID, dir, filename)
				ok, err := l.store.Exists(ctx, bucket, key)
				if err != nil {
					continue
				}
				if ok {
					return key, nil
				}
			}
			return "", nil
		}},

		// C. Snapshot-scoped metadata search: */{snapshot}/*{file}
		{name: "snapshot-metadata", run: func(ctx context.Context) (string, error) {
			if l.index == nil {
				return "", nil
			}
			pattern := fmt.Sprintf("%%/%s/%%%s", snapshotID, filename)
			hits, err := l.index.Search(ctx, bucket, pattern)
			if err != nil {
				return "", err
			}
			if len(hits) > 0 {
				return hits[0], nil
			}
			return "", nil
		}},

		// D. Root scan for {dir}/{snapshot}/{file}
		{name: "root-snapshot-scan", run: func(ctx context.Context) (string, error) {
			dirs, err := l.store.ListDirs(ctx, bucket, "")
			if err != nil {
				return "", err
			}
			for _, dir := range dirs {
				key := fmt.Sprintf("%s/%s/%s", dir, snapshotID, filename)
				ok, err := l.store.Exists(ctx, bucket, key)
				if err != nil {
					continue
				}
				if ok {
					return key, nil
				}
			}
			return "", nil
		}},

		// E. Root scan for {dir}/{file} (flat legacy layout)
		{name: "root-direct-scan", run: func(ctx context.Context) (string, error) {
			dirs, err := l.store.ListDirs(ctx, bucket, "")
			if err != nil {
				return "", err
			}
			for _, dir := range dirs {
				key := fmt.Sprintf("%s/%s", dir, filename)
				ok, err := l.store.Exists(ctx, bucket, key)
				if err != nil {
					continue
				}
				if ok {
					return key, nil
				}
			}
			return "", nil
		}},

		// F. Global metadata search for any path ending in /{file}
		{name: "global-metadata", run: func(ctx context.Context) (string, error) {
			if l.index == nil {
				return "", nil
			}
			hits, err := l.index.Search(ctx, bucket, "%/"+filename)
			if err != nil {
				return "", err
			}
			return pickBestHit(hits, accountID, snapshotID), nil
		}},
	}
}

// pickBestHit disambiguates multiple global-search hits: prefer a path
// containing the snapshot id, then one rooted at the account id, then the
// first result.
func pickBestHit(hits []string, accountID, snapshotID string) string {
	if len(hits) == 0 {
		return ""
	}
	for _, h := range hits {
		if strings.Contains(h, snapshotID) {
			return h
		}
	}
	for _, h := range hits {
		if strings.HasPrefix(h, accountID+"/") {
			return h
		}
	}
	return hits[0]
}
