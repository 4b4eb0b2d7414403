package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is anything that can report its availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a HealthHandler over named dependency checkers.
func NewHealthHandler(checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Liveness handles GET /healthz. It answers 200 as long as the process is
// serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz, probing each dependency with a short
// deadline. Any failure flips the whole response to 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	writeJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	})
}
