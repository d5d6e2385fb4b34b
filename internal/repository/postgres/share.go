// Package postgres implements the row-store repositories over database/sql
// with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emberlabs/snapmetrics/internal/domain"
	"github.com/emberlabs/snapmetrics/internal/service/share"
)

// ShareRepo implements share.Repository against PostgreSQL.
type ShareRepo struct{ db *sql.DB }

// NewShareRepo creates a Postgres-backed share repository.
func NewShareRepo(db *sql.DB) *ShareRepo { return &ShareRepo{db: db} }

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	l := &domain.ShareLink{}
	err := r.db.QueryRowContext(ctx, `
		SELECT share_token, snapshot_id, is_active, expires_at,
		       access_count, last_accessed_at, created_at
		FROM share_links
		WHERE share_token = $1
	`, token).Scan(
		&l.Token, &l.SnapshotID, &l.IsActive, &l.ExpiresAt,
		&l.AccessCount, &l.LastAccessedAt, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, share.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share link: %w", err)
	}
	return l, nil
}

func (r *ShareRepo) GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	s := &domain.Snapshot{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, upload_id, status, last_email_date, created_at
		FROM snapshots
		WHERE id = $1
	`, snapshotID).Scan(
		&s.ID, &s.AccountID, &s.UploadID, &s.Status, &s.LastEmailDate, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, share.ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return s, nil
}

func (r *ShareRepo) Create(ctx context.Context, link *domain.ShareLink) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO share_links (share_token, snapshot_id, is_active, expires_at, access_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`, link.Token, link.SnapshotID, link.IsActive, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert share link: %w", err)
	}
	return nil
}

func (r *ShareRepo) Deactivate(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE share_links SET is_active = false WHERE share_token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("deactivate share link: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return share.ErrNotFound
	}
	return nil
}

func (r *ShareRepo) RecordAccess(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE share_links
		SET access_count = access_count + 1, last_accessed_at = NOW()
		WHERE share_token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("record share access: %w", err)
	}
	return nil
}
