package share

import (
	"context"

	"github.com/emberlabs/snapmetrics/internal/domain"
)

// Repository defines the data access contract for share links and the
// snapshots they reference. Implementations must be safe for concurrent use.
type Repository interface {
	// GetByToken returns a share link by exact token match.
	// Returns ErrNotFound if no record exists.
	GetByToken(ctx context.Context, token string) (*domain.ShareLink, error)

	// GetSnapshot returns the snapshot a share references.
	// Returns ErrSnapshotMissing if it doesn't exist.
	GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error)

	// Create inserts a new share link.
	Create(ctx context.Context, link *domain.ShareLink) error

	// Deactivate flips is_active off. Returns ErrNotFound for unknown tokens.
	Deactivate(ctx context.Context, token string) error

	// RecordAccess bumps the access counter and last-accessed timestamp.
	// Called fire-and-forget on the serving path; failures must not matter.
	RecordAccess(ctx context.Context, token string) error
}
