// handlers_control.go - Window placement and process control
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/overlay"
)

// DockRequest is the body of POST /api/dock.
type DockRequest struct {
	Pos string `json:"pos"`
}

// PlacementResponse reports where the window ended up.
type PlacementResponse struct {
	Dock     string          `json:"dock"`
	Geometry models.Geometry `json:"geometry"`
}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Status string `json:"status"`
}

// ControlHandlerImpl implements the ControlHandler interface
type ControlHandlerImpl struct {
	runner   Runner
	shutdown func()
}

// NewControlHandler creates a control handler. shutdown stops the overlay
// gracefully; nil disables the shutdown endpoint.
func NewControlHandler(runner Runner, shutdown func()) ControlHandler {
	return &ControlHandlerImpl{runner: runner, shutdown: shutdown}
}

// HandleDock snaps the window to a screen corner
func (h *ControlHandlerImpl) HandleDock(c echo.Context) error {
	var req DockRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	pos := strings.ToLower(strings.TrimSpace(req.Pos))
	if pos == "" {
		return NewValidationError("pos", errors.New("pos is required"))
	}

	var resp PlacementResponse
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		if !e.Dock(pos) {
			return NewValidationError("pos", errors.New("pos must be one of tl, tr, bl, br"))
		}
		resp = placement(e)
		return nil
	})
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleUndock forgets the dock corner so file reloads stop re-docking
func (h *ControlHandlerImpl) HandleUndock(c echo.Context) error {
	var resp PlacementResponse
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		e.Undock()
		resp = placement(e)
		return nil
	})
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleShutdown asks the overlay to save its state and exit
func (h *ControlHandlerImpl) HandleShutdown(c echo.Context) error {
	if h.shutdown == nil {
		return NewServiceUnavailableError("shutdown is not available")
	}
	if err := c.JSON(http.StatusAccepted, ShutdownResponse{Status: "stopping"}); err != nil {
		return err
	}
	h.shutdown()
	return nil
}

func placement(e *overlay.Engine) PlacementResponse {
	st := e.Status()
	return PlacementResponse{Dock: st.Dock, Geometry: st.Geometry}
}
