package domain

import "time"

// SnapshotStatus tracks a snapshot's build lifecycle in the row store.
type SnapshotStatus string

const (
	SnapshotPending  SnapshotStatus = "pending"
	SnapshotReady    SnapshotStatus = "ready"
	SnapshotFailed   SnapshotStatus = "failed"
	SnapshotArchived SnapshotStatus = "archived"
)

// Snapshot is the persisted record binding one upload's three CSV files to a
// computed aggregate view. The aggregate itself is a rebuildable cache; only
// this row and last_email_date survive as durable state.
type Snapshot struct {
	ID            string
	AccountID     string
	UploadID      *string // nil for snapshots created before uploads were modeled
	Status        SnapshotStatus
	LastEmailDate *time.Time
	CreatedAt     time.Time
}

// Complete reports whether the snapshot carries the identifiers the build
// pipeline needs. Incomplete snapshots must never be served through shares.
func (s Snapshot) Complete() bool { return s.UploadID != nil && *s.UploadID != "" }
