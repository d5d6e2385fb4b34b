package domain

import "time"

// ShareLink grants time-limited, revocable anonymous read access to one
// snapshot's rendered data. The token is the only credential.
type ShareLink struct {
	Token          string
	SnapshotID     string
	IsActive       bool
	ExpiresAt      *time.Time // nil means no expiry
	AccessCount    int
	LastAccessedAt *time.Time
	CreatedAt      time.Time
}

// Valid reports whether the share may resolve to data at the given instant.
func (l ShareLink) Valid(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// Expired reports whether the share has a past expiry. Distinct from !Valid
// so callers can log the precise failure cause.
func (l ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// BlobLocation identifies exactly one stored object across the candidate
// storage buckets. It is the result type of path resolution, never persisted.
type BlobLocation struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}
