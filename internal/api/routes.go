// routes.go - Route registration helpers
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/slide-scroller/overlay/internal/events"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Runner       Runner
	Bus          *events.Bus
	Shutdown     func()
	Version      string
	PID          int
	ClientBuffer int
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Status  StatusHandler
	Slides  SlideHandler
	Control ControlHandler
	Stream  EventStreamHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.PID),
		Status:  NewStatusHandler(deps.Runner),
		Slides:  NewSlideHandler(deps.Runner),
		Control: NewControlHandler(deps.Runner, deps.Shutdown),
		Stream:  NewHub(deps.Bus, deps.ClientBuffer),
	}
}

// Close releases long-lived handler resources.
func (h *Handlers) Close() {
	if h.Stream != nil {
		h.Stream.Close()
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	apiGroup.GET("/status", handlers.Status.HandleStatus)
	apiGroup.GET("/status/msgpack", handlers.Status.HandleStatusMsgpack)
	apiGroup.GET("/view", handlers.Status.HandleView)

	slideGroup := apiGroup.Group("/slides")
	slideGroup.POST("/lock", handlers.Slides.HandleLock)
	slideGroup.POST("/unlock", handlers.Slides.HandleUnlock)

	apiGroup.POST("/dock", handlers.Control.HandleDock)
	apiGroup.POST("/undock", handlers.Control.HandleUndock)
	apiGroup.POST("/shutdown", handlers.Control.HandleShutdown)

	apiGroup.GET("/ws", handlers.Stream.HandleWebSocket)
}

// MiddlewareOptions tunes SetupMiddleware.
type MiddlewareOptions struct {
	RequestLogging bool
	BodyLimit      string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !opts.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || strings.HasSuffix(path, "/ws")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	limit := opts.BodyLimit
	if limit == "" {
		limit = "64K"
	}
	e.Use(middleware.BodyLimit(limit))
}
