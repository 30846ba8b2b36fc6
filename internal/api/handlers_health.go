// handlers_health.go - Liveness probe used by overlayctl
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	PID     int     `json:"pid"`
	Uptime  float64 `json:"uptime_seconds"`
}

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	pid     int
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, pid int) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		pid:     pid,
		started: time.Now(),
	}
}

// HandleHealth answers without touching the event loop, so it stays
// responsive while the loop is busy.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		PID:     h.pid,
		Uptime:  time.Since(h.started).Seconds(),
	})
}
