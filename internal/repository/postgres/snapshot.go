package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SnapshotRepo holds the snapshot mutations the build pipeline needs.
type SnapshotRepo struct{ db *sql.DB }

// NewSnapshotRepo creates a Postgres-backed snapshot repository.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// SetLastEmailDate records the newest send date seen during aggregation.
// Called best-effort after each build.
func (r *SnapshotRepo) SetLastEmailDate(ctx context.Context, snapshotID string, d time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE snapshots SET last_email_date = $2 WHERE id = $1
	`, snapshotID, d)
	if err != nil {
		return fmt.Errorf("set last email date: %w", err)
	}
	return nil
}
