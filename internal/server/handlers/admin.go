package handlers

import (
	"context"
	"net/http"
	"time"
)

// Refresher starts an on-demand fetch cycle.
type Refresher interface {
	TriggerFetch(ctx context.Context) bool
}

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler serves the refresh and health endpoints.
type AdminHandler struct {
	refresher Refresher
	db        Pinger
	startedAt time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(refresher Refresher, db Pinger) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
		db:        db,
		startedAt: time.Now().UTC(),
	}
}

// Refresh kicks off a fetch cycle in the background. An already-running
// cycle is reported, not duplicated.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives the request, so it runs on its own context.
	if !h.refresher.TriggerFetch(context.Background()) {
		respondWithJSON(w, http.StatusConflict, map[string]string{
			"status": "already_running",
		})

		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

// Health reports process and storage health. A down database makes the
// endpoint itself unhealthy so orchestrators restart or reroute.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	respondWithJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
