package handlers

import (
	"net/http"

	"github.com/isdelr/user-directory/internal/monitoring"
)

// HealthReporter exposes the latest store health check.
type HealthReporter interface {
	Status() monitoring.HealthStatus
}

// HealthHandler serves the store health endpoint.
type HealthHandler struct {
	health HealthReporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(health HealthReporter) *HealthHandler {
	return &HealthHandler{health: health}
}

// Get reports 200 while the store is reachable and 503 otherwise.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := h.health.Status()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
