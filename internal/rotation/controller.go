package rotation

import (
	"log/slog"
	"time"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/slides"
)

// State of the rotation state machine.
type State string

const (
	StateRunning State = "unlocked-running"
	StateLocked  State = "locked"
)

// Controller advances the current slide on a countdown unless locked to one
// position. It is not safe for concurrent use; the overlay drives it from a
// single goroutine.
type Controller struct {
	pool       *Pool
	transition *Transition
	current    int
	lock       int
	remaining  time.Duration
	active     slides.Slide
	logger     *slog.Logger
}

// NewController creates a controller over pool.
func NewController(pool *Pool, transition *Transition) *Controller {
	if transition == nil {
		transition = NewTransition(DefaultTransitionDuration)
	}
	return &Controller{
		pool:       pool,
		transition: transition,
		lock:       models.Unlocked,
		logger:     slog.With("component", "rotation"),
	}
}

// Pool returns the slide pool.
func (c *Controller) Pool() *Pool { return c.pool }

// Transition returns the animator.
func (c *Controller) Transition() *Transition { return c.transition }

// State returns the state machine state.
func (c *Controller) State() State {
	if c.Locked() {
		return StateLocked
	}
	return StateRunning
}

// Locked reports whether rotation is frozen.
func (c *Controller) Locked() bool { return c.lock >= 0 }

// Current returns the current pool position.
func (c *Controller) Current() int { return c.current }

// LockedIndex returns the locked position, or models.Unlocked.
func (c *Controller) LockedIndex() int { return c.lock }

// Remaining returns the countdown until the next advance.
func (c *Controller) Remaining() time.Duration { return c.remaining }

// CurrentSlide returns the live slide at the current position.
func (c *Controller) CurrentSlide() (slides.Slide, bool) {
	e, ok := c.pool.At(c.current)
	if !ok {
		return nil, false
	}
	return e.Slide, true
}

// Restore applies the persisted state without animating. A lock wins over
// last_slide_index; indices outside the pool clamp to 0.
func (c *Controller) Restore(state models.SlideState) {
	n := c.pool.Len()
	c.lock = models.Unlocked
	c.current = 0

	switch {
	case state.LockedSlide >= 0 && state.LockedSlide < n:
		c.lock = state.LockedSlide
		c.current = state.LockedSlide
	case state.LockedSlide < 0 && state.LastSlideIndex >= 0 && state.LastSlideIndex < n:
		c.current = state.LastSlideIndex
	}

	c.transition.SetCurrent(c.current)
	c.activate()
	c.resetCountdown()
	c.logger.Info("rotation restored", "state", c.State(), "current", c.current, "pool", n)
}

// Rebuild reconciles the pool with configs and re-applies the persisted lock,
// which always wins over in-memory state.
func (c *Controller) Rebuild(configs []models.SlideConfig, state models.SlideState, env slides.Env) ReconcileResult {
	c.transition.Finish()
	wasLocked := c.Locked()

	res := c.pool.Reconcile(configs, env)
	n := c.pool.Len()

	switch {
	case state.LockedSlide >= 0 && state.LockedSlide < n:
		c.lock = state.LockedSlide
		c.current = state.LockedSlide
	case state.LockedSlide >= n:
		c.lock = models.Unlocked
		c.current = 0
	default:
		c.lock = models.Unlocked
		if c.current >= n {
			c.current = 0
		}
	}

	c.transition.SetCurrent(c.current)
	changed := c.activate()
	if changed || c.current >= res.MatchCount || (wasLocked && !c.Locked()) {
		c.resetCountdown()
	}
	return res
}

// Tick counts elapsed down and advances to the next slide when it runs out.
// It returns true when the current slide changed.
func (c *Controller) Tick(elapsed time.Duration, now time.Time) bool {
	n := c.pool.Len()
	if c.Locked() || n == 0 {
		return false
	}

	c.remaining -= elapsed
	if c.remaining > 0 {
		return false
	}

	c.current = (c.current + 1) % n
	c.transition.SlideTo(c.current, n, now)
	c.activate()
	c.resetCountdown()
	return true
}

// Lock freezes rotation on idx and animates there. An index outside the pool
// leaves the controller unlocked at position 0.
func (c *Controller) Lock(idx int, now time.Time) bool {
	n := c.pool.Len()
	if idx < 0 || idx >= n {
		c.logger.Warn("lock index out of range", "index", idx, "pool", n)
		c.lock = models.Unlocked
		c.current = 0
		c.transition.SlideTo(0, n, now)
		c.activate()
		c.resetCountdown()
		return false
	}

	c.lock = idx
	c.current = idx
	c.transition.SlideTo(idx, n, now)
	c.activate()
	return true
}

// Unlock resumes rotation with the full duration of the current slide.
func (c *Controller) Unlock() {
	c.lock = models.Unlocked
	c.resetCountdown()
}

// Show navigates to idx without touching the lock. The countdown restarts
// when the visible slide changes.
func (c *Controller) Show(idx int, now time.Time) bool {
	n := c.pool.Len()
	if idx < 0 || idx >= n {
		return false
	}
	c.current = idx
	c.transition.SlideTo(idx, n, now)
	if c.activate() {
		c.resetCountdown()
	}
	return true
}

// Frame advances the transition and the visible slide's own animation.
func (c *Controller) Frame(now time.Time, elapsed time.Duration) {
	c.transition.Advance(now)
	if c.active != nil {
		c.active.Tick(elapsed)
	}
}

// Close stops the pool.
func (c *Controller) Close() {
	c.active = nil
	c.pool.Close()
}

func (c *Controller) resetCountdown() {
	if e, ok := c.pool.At(c.current); ok {
		c.remaining = e.Duration()
		return
	}
	c.remaining = 0
}

// activate starts the slide at the current position and stops the previous
// one if it is still alive. It returns true when the visible slide changed.
func (c *Controller) activate() bool {
	e, ok := c.pool.At(c.current)
	if !ok {
		c.active = nil
		return true
	}
	if e.Slide == c.active {
		return false
	}
	if c.active != nil && c.inPool(c.active) {
		c.active.Stop()
	}
	c.active = e.Slide
	c.active.Start()
	return true
}

func (c *Controller) inPool(s slides.Slide) bool {
	for _, e := range c.pool.entries {
		if e.Slide == s {
			return true
		}
	}
	return false
}
