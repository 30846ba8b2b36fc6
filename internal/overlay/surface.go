package overlay

import (
	"sync"

	"github.com/slide-scroller/overlay/internal/models"
)

// Screen is the usable desktop area, excluding reserved panels.
type Screen struct {
	Left   int `json:"left" msgpack:"left"`
	Top    int `json:"top" msgpack:"top"`
	Width  int `json:"width" msgpack:"width"`
	Height int `json:"height" msgpack:"height"`
}

// Right returns the rightmost usable column.
func (s Screen) Right() int { return s.Left + s.Width }

// Surface is the window the overlay draws into. Implementations wrap a
// windowing toolkit; all calls come from the engine goroutine.
type Surface interface {
	Geometry() models.Geometry
	Move(x, y int)
	Resize(width, height int)
	// Recreate rebuilds the window with the given input transparency, which
	// cannot be toggled on a live window.
	Recreate(clickThrough bool) error
	ClickThrough() bool
	Raise()
	Screen() Screen
	Render(f Frame)
	Close() error
}

// Headless is a Surface without a window. It records what it was asked to do
// and keeps the last rendered frame for the control server.
type Headless struct {
	mu           sync.Mutex
	geo          models.Geometry
	screen       Screen
	clickThrough bool
	recreated    int
	raised       int
	frame        Frame
	closed       bool
}

// NewHeadless creates a headless surface on a screen of the given size.
func NewHeadless(screen Screen) *Headless {
	return &Headless{screen: screen}
}

func (h *Headless) Geometry() models.Geometry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.geo
}

func (h *Headless) Move(x, y int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.geo.X, h.geo.Y = x, y
}

func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.geo.Width, h.geo.Height = width, height
}

func (h *Headless) Recreate(clickThrough bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clickThrough = clickThrough
	h.recreated++
	return nil
}

func (h *Headless) ClickThrough() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clickThrough
}

func (h *Headless) Raise() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raised++
}

func (h *Headless) Screen() Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.screen
}

func (h *Headless) Render(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = f
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// LastFrame returns the most recent rendered frame.
func (h *Headless) LastFrame() Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// Recreated counts window recreations.
func (h *Headless) Recreated() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recreated
}

// Raised counts keep-on-top raises.
func (h *Headless) Raised() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raised
}
