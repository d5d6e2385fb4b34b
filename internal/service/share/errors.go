package share

import "errors"

// Sentinel errors for the share service layer. The HTTP layer collapses all
// of these into one generic not-found response; they exist so logs can name
// the real cause.
var (
	ErrNotFound           = errors.New("share not found")
	ErrInactive           = errors.New("share is deactivated")
	ErrExpired            = errors.New("share has expired")
	ErrIncompleteSnapshot = errors.New("share references an incomplete snapshot")
	ErrSnapshotMissing    = errors.New("snapshot not found")
)
