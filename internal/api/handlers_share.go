package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emberlabs/snapmetrics/internal/pkg/httputil"
	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
	"github.com/emberlabs/snapmetrics/internal/service/share"
	"github.com/emberlabs/snapmetrics/internal/snapshot"
	"github.com/emberlabs/snapmetrics/internal/storage"
)

// sharedNotFound is the single response body for every invalid-share case.
// Unknown, deactivated, expired, and incomplete shares must be
// indistinguishable to the caller so tokens cannot be enumerated.
func sharedNotFound(w http.ResponseWriter) {
	httputil.NotFound(w, "share not found or expired")
}

// resolveShare validates the token and writes the generic failure response
// itself. The nil return means the response is already committed.
func (h *Handlers) resolveShare(w http.ResponseWriter, r *http.Request) *share.Grant {
	token := chi.URLParam(r, "token")
	grant, err := h.shares.Resolve(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, share.ErrNotFound),
			errors.Is(err, share.ErrInactive),
			errors.Is(err, share.ErrExpired),
			errors.Is(err, share.ErrIncompleteSnapshot),
			errors.Is(err, share.ErrSnapshotMissing):
			sharedNotFound(w)
		default:
			httputil.InternalError(w, err)
		}
		return nil
	}

	// Access accounting is fire-and-forget: detached from the request
	// context so a slow row store never blocks the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.shares.RecordAccess(ctx, token)
	}()

	return grant
}

// GetSharedData serves GET /shared/{token}/data: the full snapshot document.
func (h *Handlers) GetSharedData(w http.ResponseWriter, r *http.Request) {
	grant := h.resolveShare(w, r)
	if grant == nil {
		return
	}

	doc, err := h.builder.Build(r.Context(), snapshot.Identity{
		SnapshotID: grant.SnapshotID,
		AccountID:  grant.AccountID,
		UploadID:   grant.UploadID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sharedNotFound(w)
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, doc)
}

// GetSharedCSV serves GET /shared/{token}/csv?file={name}: the raw bytes of
// one canonical file. Filenames outside the allow-list are rejected before
// any storage access.
func (h *Handlers) GetSharedCSV(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if !allowedFile(filename) {
		httputil.BadRequest(w, "file must be one of campaigns.csv, flows.csv, subscribers.csv")
		return
	}

	grant := h.resolveShare(w, r)
	if grant == nil {
		return
	}

	data, err := h.builder.Fetch(r.Context(), snapshot.Identity{
		SnapshotID: grant.SnapshotID,
		AccountID:  grant.AccountID,
		UploadID:   grant.UploadID,
	}, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sharedNotFound(w)
			return
		}
		httputil.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Debug("shared csv: client write failed", "error", err)
	}
}

func allowedFile(name string) bool {
	for _, f := range snapshot.CanonicalFiles {
		if name == f {
			return true
		}
	}
	return false
}

// CreateShare serves POST /api/shares.
func (h *Handlers) CreateShare(w http.ResponseWriter, r *http.Request) {
	var in share.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	link, err := h.shares.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, share.ErrSnapshotMissing):
			httputil.NotFound(w, "snapshot not found")
		case errors.Is(err, share.ErrIncompleteSnapshot):
			httputil.BadRequest(w, "snapshot is not complete")
		default:
			httputil.BadRequest(w, err.Error())
		}
		return
	}

	httputil.Created(w, map[string]any{
		"token":      link.Token,
		"expires_at": link.ExpiresAt,
	})
}

// RevokeShare serves DELETE /api/shares/{token}.
func (h *Handlers) RevokeShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.shares.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, share.ErrNotFound) {
			httputil.NotFound(w, "share not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
