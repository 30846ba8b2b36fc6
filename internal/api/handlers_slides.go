// handlers_slides.go - Lock and unlock commands
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slide-scroller/overlay/internal/overlay"
)

// LockRequest is the body of POST /api/slides/lock.
type LockRequest struct {
	Index *int `json:"index"`
}

// SlideHandlerImpl implements the SlideHandler interface
type SlideHandlerImpl struct {
	runner Runner
}

// NewSlideHandler creates a new slide command handler
func NewSlideHandler(runner Runner) SlideHandler {
	return &SlideHandlerImpl{runner: runner}
}

// HandleLock pins rotation on the requested pool index
func (h *SlideHandlerImpl) HandleLock(c echo.Context) error {
	var req LockRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Index == nil {
		return NewValidationError("index", errors.New("index is required"))
	}

	var payload overlay.SlidePayload
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		if err := e.Lock(*req.Index); err != nil {
			return err
		}
		payload = e.CurrentPayload()
		return nil
	})
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, payload)
}

// HandleUnlock resumes rotation
func (h *SlideHandlerImpl) HandleUnlock(c echo.Context) error {
	var payload overlay.SlidePayload
	err := h.runner.Do(c.Request().Context(), func(e *overlay.Engine) error {
		if err := e.Unlock(); err != nil {
			return err
		}
		payload = e.CurrentPayload()
		return nil
	})
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, payload)
}
