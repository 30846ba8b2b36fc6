// handlers_status.go - Status and view snapshots
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/slide-scroller/overlay/internal/overlay"
)

// StatusHandlerImpl implements the StatusHandler interface
type StatusHandlerImpl struct {
	runner Runner
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(runner Runner) StatusHandler {
	return &StatusHandlerImpl{runner: runner}
}

func (h *StatusHandlerImpl) snapshot(c echo.Context) (overlay.Status, error) {
	var st overlay.Status
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		st = e.Status()
		return nil
	})
	return st, err
}

// HandleStatus returns the engine snapshot as JSON
func (h *StatusHandlerImpl) HandleStatus(c echo.Context) error {
	st, err := h.snapshot(c)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, st)
}

// HandleStatusMsgpack returns the engine snapshot in MessagePack format
func (h *StatusHandlerImpl) HandleStatusMsgpack(c echo.Context) error {
	st, err := h.snapshot(c)
	if err != nil {
		return engineError(err)
	}

	data, err := msgpack.Marshal(st)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleView returns the frame currently drawn on the surface
func (h *StatusHandlerImpl) HandleView(c echo.Context) error {
	var f overlay.Frame
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		f = e.View()
		return nil
	})
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, f)
}
