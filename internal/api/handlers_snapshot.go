package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberlabs/snapmetrics/internal/pkg/httputil"
	"github.com/emberlabs/snapmetrics/internal/service/share"
	"github.com/emberlabs/snapmetrics/internal/snapshot"
	"github.com/emberlabs/snapmetrics/internal/storage"
)

// accountHeader carries the authenticated account id, set by the auth edge
// in front of this service. The identity provider itself is an external
// collaborator; this service only scopes by the id it is handed.
const accountHeader = "X-Account-ID"

// GetSnapshotData serves GET /api/snapshots/{snapshotID}/data for the
// private dashboard. Snapshots outside the caller's account look identical
// to missing ones.
func (h *Handlers) GetSnapshotData(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(accountHeader)
	if accountID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing account identity")
		return
	}

	snapshotID := chi.URLParam(r, "snapshotID")
	snap, err := h.shares.Snapshot(r.Context(), snapshotID)
	if err != nil {
		if errors.Is(err, share.ErrSnapshotMissing) {
			httputil.NotFound(w, "snapshot not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	if snap.AccountID != accountID {
		httputil.NotFound(w, "snapshot not found")
		return
	}

	doc, err := h.builder.Build(r.Context(), snapshot.Identity{
		SnapshotID: snap.ID,
		AccountID:  snap.AccountID,
		UploadID:   snap.UploadID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.NotFound(w, "snapshot data not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, doc)
}
