package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlabs/snapmetrics/internal/domain"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu        sync.Mutex
	links     map[string]*domain.ShareLink
	snapshots map[string]*domain.Snapshot
	accesses  map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		links:     make(map[string]*domain.ShareLink),
		snapshots: make(map[string]*domain.Snapshot),
		accesses:  make(map[string]int),
	}
}

func (r *memRepo) GetByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *memRepo) GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snapshots[snapshotID]
	if !ok {
		return nil, ErrSnapshotMissing
	}
	cp := *snap
	return &cp, nil
}

func (r *memRepo) Create(ctx context.Context, link *domain.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.Token] = link
	return nil
}

func (r *memRepo) Deactivate(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[token]
	if !ok {
		return ErrNotFound
	}
	link.IsActive = false
	return nil
}

func (r *memRepo) RecordAccess(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accesses[token]++
	return nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memRepo) *Service {
	return NewServiceWithClock(repo, func() time.Time { return fixedNow })
}

func seedSnapshot(repo *memRepo, id, account string, uploadID *string) {
	repo.snapshots[id] = &domain.Snapshot{
		ID:        id,
		AccountID: account,
		UploadID:  uploadID,
		Status:    domain.SnapshotReady,
	}
}

func strp(s string) *string { return &s }

func TestResolveValidToken(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	exp := fixedNow.Add(24 * time.Hour)
	repo.links["tok"] = &domain.ShareLink{
		Token: "tok", SnapshotID: "s1", IsActive: true, ExpiresAt: &exp,
	}

	grant, err := newTestService(repo).Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "s1", grant.SnapshotID)
	assert.Equal(t, "a1", grant.AccountID)
	require.NotNil(t, grant.UploadID)
	assert.Equal(t, "u1", *grant.UploadID)
	require.NotNil(t, grant.ExpiresAt)
	assert.True(t, exp.Equal(*grant.ExpiresAt))
}

func TestResolveNoExpiryNeverExpires(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	repo.links["tok"] = &domain.ShareLink{Token: "tok", SnapshotID: "s1", IsActive: true}

	grant, err := newTestService(repo).Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Nil(t, grant.ExpiresAt)
}

func TestResolveUnknownToken(t *testing.T) {
	repo := newMemRepo()
	_, err := newTestService(repo).Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveDeactivatedToken(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	repo.links["tok"] = &domain.ShareLink{Token: "tok", SnapshotID: "s1", IsActive: false}

	_, err := newTestService(repo).Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInactive)
}

func TestResolveExpiredToken(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	exp := fixedNow.Add(-time.Minute)
	repo.links["tok"] = &domain.ShareLink{
		Token: "tok", SnapshotID: "s1", IsActive: true, ExpiresAt: &exp,
	}

	_, err := newTestService(repo).Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestResolveExpiryCheckedBeforeSnapshot(t *testing.T) {
	// Expired link pointing at a missing snapshot reports expiry, not the
	// snapshot problem.
	repo := newMemRepo()
	exp := fixedNow.Add(-time.Minute)
	repo.links["tok"] = &domain.ShareLink{
		Token: "tok", SnapshotID: "gone", IsActive: true, ExpiresAt: &exp,
	}

	_, err := newTestService(repo).Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestResolveMissingSnapshot(t *testing.T) {
	repo := newMemRepo()
	repo.links["tok"] = &domain.ShareLink{Token: "tok", SnapshotID: "gone", IsActive: true}

	_, err := newTestService(repo).Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestResolveIncompleteSnapshot(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", nil) // no upload id yet
	repo.links["tok"] = &domain.ShareLink{Token: "tok", SnapshotID: "s1", IsActive: true}

	_, err := newTestService(repo).Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrIncompleteSnapshot)
}

func TestCreateShare(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	svc := newTestService(repo)

	link, err := svc.Create(context.Background(), CreateInput{SnapshotID: "s1", ExpiresInDays: 7})
	require.NoError(t, err)
	assert.NotEmpty(t, link.Token)
	assert.True(t, link.IsActive)
	require.NotNil(t, link.ExpiresAt)
	assert.True(t, fixedNow.AddDate(0, 0, 7).Equal(*link.ExpiresAt))

	grant, err := svc.Resolve(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, "s1", grant.SnapshotID)
}

func TestCreateShareNoExpiry(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))

	link, err := newTestService(repo).Create(context.Background(), CreateInput{SnapshotID: "s1"})
	require.NoError(t, err)
	assert.Nil(t, link.ExpiresAt)
}

func TestCreateShareValidation(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{SnapshotID: "missing"})
	assert.ErrorIs(t, err, ErrSnapshotMissing)

	seedSnapshot(repo, "s2", "a1", nil)
	_, err = svc.Create(context.Background(), CreateInput{SnapshotID: "s2"})
	assert.ErrorIs(t, err, ErrIncompleteSnapshot)
}

func TestRevoke(t *testing.T) {
	repo := newMemRepo()
	seedSnapshot(repo, "s1", "a1", strp("u1"))
	repo.links["tok"] = &domain.ShareLink{Token: "tok", SnapshotID: "s1", IsActive: true}
	svc := newTestService(repo)

	require.NoError(t, svc.Revoke(context.Background(), "tok"))
	_, err := svc.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInactive)

	assert.ErrorIs(t, svc.Revoke(context.Background(), "nope"), ErrNotFound)
}

func TestRecordAccessSwallowsErrors(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	// No link exists; must not panic or propagate anything.
	svc.RecordAccess(context.Background(), "tok")
	assert.Equal(t, 1, repo.accesses["tok"])
}
