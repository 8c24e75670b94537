package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	Version string
	Started time.Time
	// StoreEnabled is true when results are persisted.
	StoreEnabled bool
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Store   bool   `json:"store"`
}

// Health returns the service status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.Version,
		Uptime:  time.Since(h.Started).Round(time.Second).String(),
		Store:   h.StoreEnabled,
	})
}
