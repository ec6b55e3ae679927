package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sqlsage/sqlsage/internal/models"
)

const version = "1.0.0"

// HealthChecker is implemented by services that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	db           HealthChecker
	agentEnabled bool
}

func NewHealthHandler(db HealthChecker, agentEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, agentEnabled: agentEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so a wedged engine doesn't block the probe
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.TestConnection(ctx); err != nil {
			checks["database"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	if h.agentEnabled {
		checks["agent"] = "ok"
	} else {
		checks["agent"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
