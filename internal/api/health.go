package api

import (
	"database/sql"
	"log/slog"
	"net/http"
)

// HealthHandler reports service health.
type HealthHandler struct {
	DB *sql.DB
}

// Check handles GET /healthz by pinging the database.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		jsonMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
