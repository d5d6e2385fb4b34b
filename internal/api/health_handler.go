package api

import (
	"net/http"
	"time"

	"github.com/emberlabs/snapmetrics/internal/pkg/httputil"
)

// HealthCheck serves GET /health with component status. The service is
// "ok" as long as it can answer; degraded collaborators are reported but
// do not fail the probe (the share path can still serve cached data).
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			components["database"] = "unreachable"
		} else {
			components["database"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			components["cache"] = "unreachable"
		} else {
			components["cache"] = "ok"
		}
	}

	httputil.OK(w, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}
