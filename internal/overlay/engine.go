// Package overlay runs the overlay: a single goroutine owns the slide pool,
// the rotation state and the surface, and serializes timer ticks, file
// changes and control commands.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/rotation"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/store"
)

var (
	// ErrStopped is returned by Do once the event loop has exited.
	ErrStopped = errors.New("overlay stopped")
	// ErrIndexOutOfRange is returned when a command names a missing slide.
	ErrIndexOutOfRange = errors.New("slide index out of range")
)

// Options configures an Engine.
type Options struct {
	Store    store.Store
	Surface  Surface
	Bus      *events.Bus
	Registry *slides.Registry
	// Changes delivers file-change notifications; nil disables watching.
	Changes <-chan struct{}

	TickInterval        time.Duration
	FrameInterval       time.Duration
	KeepOnTopInterval   time.Duration
	TransitionDuration  time.Duration
	PlaceholderDuration int

	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.Bus == nil {
		o.Bus = events.NewBus()
	}
	if o.Registry == nil {
		o.Registry = slides.GetGlobalRegistry()
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = 16 * time.Millisecond
	}
	if o.KeepOnTopInterval <= 0 {
		o.KeepOnTopInterval = 500 * time.Millisecond
	}
	if o.PlaceholderDuration <= 0 {
		o.PlaceholderDuration = rotation.DefaultPlaceholderDuration
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// known holds the last applied value of every setting reconciled by delta.
type known struct {
	geometry     models.Geometry
	clickThrough bool
	lock         int
	margin       int
	dockTs       float64
	eventTs      float64
}

type command struct {
	fn   func(*Engine) error
	done chan error
}

// Engine is the overlay event loop.
type Engine struct {
	opts    Options
	store   store.Store
	surface Surface
	bus     *events.Bus
	ctrl    *rotation.Controller
	doc     *models.Document
	known   known
	dock    string
	started time.Time

	lastFrame time.Time
	cmds      chan command
	done      chan struct{}
	logger    *slog.Logger
}

// New loads the document, builds the slide pool and restores the persisted
// rotation state. An unreadable document falls back to the default one.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("overlay: store is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("overlay: surface is required")
	}
	opts.setDefaults()

	e := &Engine{
		opts:    opts,
		store:   opts.Store,
		surface: opts.Surface,
		bus:     opts.Bus,
		dock:    DockDefault,
		cmds:    make(chan command),
		done:    make(chan struct{}),
		logger:  slog.With("component", "engine"),
	}
	e.started = e.now()
	e.lastFrame = e.started

	doc, err := e.store.Load()
	if err != nil {
		e.logger.Warn("using default document", "path", e.store.Path(), "error", err)
		doc = models.DefaultDocument()
	}
	e.doc = doc

	pool := rotation.NewPool(opts.Registry, opts.PlaceholderDuration)
	e.ctrl = rotation.NewController(pool, rotation.NewTransition(opts.TransitionDuration))

	g := doc.Global
	e.surface.Resize(g.Width, g.Height)
	e.surface.Move(g.X, g.Y)
	if e.surface.ClickThrough() != g.ClickThrough {
		if err := e.surface.Recreate(g.ClickThrough); err != nil {
			return nil, fmt.Errorf("creating surface: %w", err)
		}
		e.surface.Move(g.X, g.Y)
	}

	cls := doc.ActiveClass()
	e.known = known{
		geometry:     g.Geometry(),
		clickThrough: g.ClickThrough,
		lock:         cls.State.LockedSlide,
		margin:       g.Margin(),
	}
	// One-shot markers already in the file were consumed by a previous run.
	if g.DockAction != nil {
		e.known.dockTs = g.DockAction.Ts
	}
	if g.LastEvent != nil {
		e.known.eventTs = g.LastEvent.Ts
	}

	pool.Reconcile(cls.ActiveSlides, e.env())
	e.ctrl.Restore(cls.State)
	e.publish(events.TopicSettings, nil)

	e.logger.Info("overlay initialized",
		"class", doc.ActiveClassID(),
		"slides", pool.Len(),
		"state", e.ctrl.State(),
		"current", e.ctrl.Current())
	return e, nil
}

// Bus returns the notification bus.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Controller returns the rotation controller.
func (e *Engine) Controller() *rotation.Controller { return e.ctrl }

// Document returns the last applied document.
func (e *Engine) Document() *models.Document { return e.doc }

// Run drives the event loop until ctx is cancelled, then persists geometry.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	tick := time.NewTicker(e.opts.TickInterval)
	defer tick.Stop()
	frame := time.NewTicker(e.opts.FrameInterval)
	defer frame.Stop()
	keepOnTop := time.NewTicker(e.opts.KeepOnTopInterval)
	defer keepOnTop.Stop()

	e.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("event loop stopping", "reason", context.Cause(ctx))
			return e.Shutdown()

		case <-tick.C:
			e.Tick()

		case <-frame.C:
			e.Animate()

		case <-keepOnTop.C:
			e.surface.Raise()

		case _, ok := <-e.opts.Changes:
			if !ok {
				e.opts.Changes = nil
				continue
			}
			e.HandleFileChange()

		case c := <-e.cmds:
			c.done <- c.fn(e)
		}
	}
}

// Do runs fn on the event loop goroutine and returns its error.
func (e *Engine) Do(ctx context.Context, fn func(*Engine) error) error {
	c := command{fn: fn, done: make(chan error, 1)}

	select {
	case e.cmds <- c:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs one countdown step.
func (e *Engine) Tick() {
	if e.ctrl.Tick(e.opts.TickInterval, e.now()) {
		e.publishSlide()
	}
}

// Animate advances the transition and the visible slide, then renders.
func (e *Engine) Animate() {
	now := e.now()
	elapsed := now.Sub(e.lastFrame)
	e.lastFrame = now

	e.ctrl.Frame(now, elapsed)
	e.surface.Render(e.Frame(now))
}

// Lock freezes rotation on idx and records the lock in the document.
func (e *Engine) Lock(idx int) error {
	if idx < 0 || idx >= e.ctrl.Pool().Len() {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	if err := e.persistLock(idx); err != nil {
		return err
	}
	e.ctrl.Lock(idx, e.now())
	e.publishLock()
	return nil
}

// Unlock resumes rotation and clears the lock in the document.
func (e *Engine) Unlock() error {
	if err := e.persistLock(models.Unlocked); err != nil {
		return err
	}
	e.ctrl.Unlock()
	e.publishLock()
	return nil
}

// Shutdown writes geometry and the current index when they changed.
func (e *Engine) Shutdown() error {
	if _, err := e.saveGeometry(); err != nil {
		e.logger.Error("saving geometry failed", "error", err)
		return err
	}
	e.logger.Info("overlay stopped")
	return nil
}

// Close releases the slides and the surface.
func (e *Engine) Close() error {
	e.ctrl.Close()
	return e.surface.Close()
}

func (e *Engine) persistLock(idx int) error {
	err := e.store.Update(func(doc *models.Document) error {
		doc.EnsureActiveClass().State.LockedSlide = idx
		return nil
	})
	if err != nil {
		return fmt.Errorf("persisting lock: %w", err)
	}
	e.known.lock = idx
	e.doc.EnsureActiveClass().State.LockedSlide = idx
	return nil
}

var errUnchanged = errors.New("unchanged")

// saveGeometry persists the window rectangle and the current index unless
// both already match the document, so a save never triggers a reload loop
// on its own.
func (e *Engine) saveGeometry() (bool, error) {
	geo := e.surface.Geometry()
	idx := e.ctrl.Current()

	err := e.store.Update(func(doc *models.Document) error {
		cls := doc.EnsureActiveClass()
		if doc.Global.Geometry() == geo && cls.State.LastSlideIndex == idx {
			return errUnchanged
		}
		doc.Global.X, doc.Global.Y = geo.X, geo.Y
		doc.Global.Width, doc.Global.Height = geo.Width, geo.Height
		cls.State.LastSlideIndex = idx
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if errors.Is(err, store.ErrCorrupt) {
		e.logger.Warn("document unreadable, geometry not saved", "path", e.store.Path(), "error", err)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("saving geometry: %w", err)
	}

	e.known.geometry = geo
	e.logger.Debug("geometry saved", "x", geo.X, "y", geo.Y, "width", geo.Width, "height", geo.Height, "slide", idx)
	return true, nil
}

func (e *Engine) env() slides.Env {
	return slides.Env{Bus: e.bus, Store: e.store, Doc: e.doc, Now: e.opts.Now}
}

func (e *Engine) now() time.Time { return e.opts.Now() }

func (e *Engine) publish(topic events.Topic, payload any) {
	e.bus.Publish(events.Message{
		Topic:    topic,
		Time:     e.now(),
		Document: e.doc,
		Payload:  payload,
	})
}

// SlidePayload accompanies TopicSlide and TopicLock messages.
type SlidePayload struct {
	Current          int     `json:"current" msgpack:"current"`
	LockedSlide      int     `json:"locked_slide" msgpack:"locked_slide"`
	RemainingSeconds float64 `json:"remaining_seconds" msgpack:"remaining_seconds"`
	Type             string  `json:"type,omitempty" msgpack:"type,omitempty"`
}

// CurrentPayload describes the visible slide and the lock state.
func (e *Engine) CurrentPayload() SlidePayload {
	p := SlidePayload{
		Current:          e.ctrl.Current(),
		LockedSlide:      e.ctrl.LockedIndex(),
		RemainingSeconds: e.ctrl.Remaining().Seconds(),
	}
	if s, ok := e.ctrl.CurrentSlide(); ok {
		p.Type = s.Type()
	}
	return p
}

func (e *Engine) publishSlide() { e.publish(events.TopicSlide, e.CurrentPayload()) }
func (e *Engine) publishLock()  { e.publish(events.TopicLock, e.CurrentPayload()) }
