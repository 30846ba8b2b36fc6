// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/slide-scroller/overlay/internal/overlay"
)

// Runner executes a function on the overlay event loop.
// *overlay.Engine satisfies it; tests may substitute their own.
type Runner interface {
	Do(ctx context.Context, fn func(*overlay.Engine) error) error
}

// StatusHandler serves read-only snapshots of the overlay
type StatusHandler interface {
	HandleStatus(c echo.Context) error
	HandleStatusMsgpack(c echo.Context) error
	HandleView(c echo.Context) error
}

// SlideHandler handles rotation commands
type SlideHandler interface {
	HandleLock(c echo.Context) error
	HandleUnlock(c echo.Context) error
}

// ControlHandler handles window placement and process control
type ControlHandler interface {
	HandleDock(c echo.Context) error
	HandleUndock(c echo.Context) error
	HandleShutdown(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// EventStreamHandler pushes bus notifications to websocket clients
type EventStreamHandler interface {
	HandleWebSocket(c echo.Context) error
	Close()
}
