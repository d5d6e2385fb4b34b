package share

import (
	"context"
	"fmt"
	"time"

	"github.com/emberlabs/snapmetrics/internal/domain"
	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
	"github.com/google/uuid"
)

// Grant is the successful result of resolving a share token: the identifier
// triple the rest of the pipeline needs, plus the expiry for cache headers.
type Grant struct {
	SnapshotID string
	AccountID  string
	UploadID   *string
	ExpiresAt  *time.Time
}

// Service implements share-link business logic over a Repository.
// All methods are safe for concurrent use if the repository is.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a share service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Resolve validates a token and returns the grant. Failure causes
// (ErrNotFound, ErrInactive, ErrExpired, ErrIncompleteSnapshot) are logged
// here with their real reason; callers must present them identically.
func (s *Service) Resolve(ctx context.Context, token string) (*Grant, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		logger.Info("share: token lookup failed", "token", token, "error", err)
		return nil, err
	}

	now := s.now()
	if !link.IsActive {
		logger.Info("share: token deactivated", "token", token)
		return nil, ErrInactive
	}
	if link.Expired(now) {
		logger.Info("share: token expired", "token", token, "expired_at", link.ExpiresAt)
		return nil, ErrExpired
	}

	snap, err := s.repo.GetSnapshot(ctx, link.SnapshotID)
	if err != nil {
		logger.Info("share: snapshot lookup failed",
			"token", token, "snapshot_id", link.SnapshotID, "error", err)
		return nil, err
	}
	if !snap.Complete() {
		logger.Info("share: snapshot missing upload id",
			"token", token, "snapshot_id", snap.ID)
		return nil, ErrIncompleteSnapshot
	}

	return &Grant{
		SnapshotID: snap.ID,
		AccountID:  snap.AccountID,
		UploadID:   snap.UploadID,
		ExpiresAt:  link.ExpiresAt,
	}, nil
}

// RecordAccess bumps the access counter for a served share. Intended to be
// called fire-and-forget; errors are logged and swallowed.
func (s *Service) RecordAccess(ctx context.Context, token string) {
	if err := s.repo.RecordAccess(ctx, token); err != nil {
		logger.Warn("share: access count update failed", "token", token, "error", err)
	}
}

// CreateInput holds the fields for minting a new share.
type CreateInput struct {
	SnapshotID    string `json:"snapshot_id"`
	ExpiresInDays int    `json:"expires_in_days"` // 0 means no expiry
}

// Create mints an active share link for an existing, complete snapshot.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ShareLink, error) {
	if in.SnapshotID == "" {
		return nil, fmt.Errorf("snapshot_id is required")
	}

	snap, err := s.repo.GetSnapshot(ctx, in.SnapshotID)
	if err != nil {
		return nil, err
	}
	if !snap.Complete() {
		return nil, ErrIncompleteSnapshot
	}

	link := &domain.ShareLink{
		Token:      uuid.New().String(),
		SnapshotID: snap.ID,
		IsActive:   true,
		CreatedAt:  s.now(),
	}
	if in.ExpiresInDays > 0 {
		exp := s.now().AddDate(0, 0, in.ExpiresInDays)
		link.ExpiresAt = &exp
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}
	logger.Info("share: created", "token", link.Token, "snapshot_id", snap.ID)
	return link, nil
}

// Revoke deactivates a share link.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.repo.Deactivate(ctx, token)
}

// NewServiceWithClock creates a service with a fixed clock. Test seam.
func NewServiceWithClock(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// Snapshot returns a snapshot row for the private dashboard surface.
func (s *Service) Snapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	return s.repo.GetSnapshot(ctx, snapshotID)
}
