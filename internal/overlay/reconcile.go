package overlay

import (
	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/slides"
)

// HandleFileChange reloads the document after a change notification. An
// unreadable document leaves the running state untouched.
func (e *Engine) HandleFileChange() {
	doc, err := e.store.Load()
	if err != nil {
		e.logger.Warn("skipping reload", "path", e.store.Path(), "error", err)
		return
	}
	e.Apply(doc)
}

// Apply reconciles the engine with doc: a structural rebuild when the
// active slide list changed, then the per-setting deltas.
func (e *Engine) Apply(doc *models.Document) {
	e.doc = doc
	cls := doc.ActiveClass()

	e.publish(events.TopicSettings, nil)

	if e.ctrl.Pool().Changed(cls.ActiveSlides) {
		before := e.ctrl.Current()
		wasLocked := e.ctrl.LockedIndex()

		res := e.ctrl.Rebuild(cls.ActiveSlides, cls.State, e.env())
		e.known.lock = cls.State.LockedSlide

		e.logger.Info("slides rebuilt",
			"match_count", res.MatchCount,
			"built", res.Built,
			"evicted", res.Evicted,
			"skipped", res.Skipped,
			"placeholder", res.Placeholder)
		e.publish(events.TopicRebuild, res)

		if e.ctrl.LockedIndex() != wasLocked {
			e.publishLock()
		}
		if e.ctrl.Current() != before || res.MatchCount <= before {
			e.publishSlide()
		}
	}

	e.reconcileSettings(doc)
}

func (e *Engine) reconcileSettings(doc *models.Document) {
	g := doc.Global
	now := e.now()

	geo := g.Geometry()
	if geo.Width != e.known.geometry.Width || geo.Height != e.known.geometry.Height {
		e.surface.Resize(geo.Width, geo.Height)
	}
	if geo.X != e.known.geometry.X || geo.Y != e.known.geometry.Y {
		e.surface.Move(geo.X, geo.Y)
	}
	e.known.geometry = geo

	if g.ClickThrough != e.known.clickThrough {
		e.known.clickThrough = g.ClickThrough
		if err := e.surface.Recreate(g.ClickThrough); err != nil {
			e.logger.Error("recreating surface failed", "clickthrough", g.ClickThrough, "error", err)
		}
		e.surface.Move(g.X, g.Y)
		e.logger.Info("click-through changed", "enabled", g.ClickThrough)
	}

	if lock := doc.ActiveClass().State.LockedSlide; lock != e.known.lock {
		e.known.lock = lock
		if lock >= 0 {
			e.ctrl.Lock(lock, now)
		} else {
			e.ctrl.Unlock()
		}
		e.logger.Info("lock changed", "locked_slide", lock, "state", e.ctrl.State())
		e.publishLock()
	}

	if a := g.DockAction; a != nil && a.Ts > e.known.dockTs {
		e.known.dockTs = a.Ts
		e.dockTo(a.Pos, g.Margin(), g.TaskbarOffset)
	}

	if m := g.Margin(); m != e.known.margin {
		e.known.margin = m
		if e.dock != DockDefault {
			e.dockTo(e.dock, m, g.TaskbarOffset)
		}
	}

	if ev := g.LastEvent; ev != nil && ev.Ts > e.known.eventTs {
		e.known.eventTs = ev.Ts
		e.processEvent(*ev)
	}
}

// Dock snaps the surface to corner pos using the document's margin.
func (e *Engine) Dock(pos string) bool {
	g := e.doc.Global
	return e.dockTo(pos, g.Margin(), g.TaskbarOffset)
}

func (e *Engine) dockTo(pos string, margin, taskbarOffset int) bool {
	x, y, ok := DockPosition(pos, e.surface.Screen(), e.surface.Geometry(), margin, taskbarOffset)
	if !ok {
		e.logger.Warn("ignoring dock action", "pos", pos)
		return false
	}

	e.surface.Move(x, y)
	e.dock = pos
	e.logger.Info("docked", "pos", pos, "x", x, "y", y, "margin", margin, "taskbar_offset", taskbarOffset)

	if _, err := e.saveGeometry(); err != nil {
		e.logger.Warn("saving docked geometry failed", "error", err)
	}
	return true
}

// Undock forgets the dock corner after the window was moved by hand.
func (e *Engine) Undock() {
	e.dock = DockDefault
}

func (e *Engine) processEvent(ev models.Event) {
	switch ev.Type {
	case models.EventIncrement:
		idx := e.ctrl.Pool().IndexOfType(models.SlideTypeChart)
		if idx < 0 {
			e.logger.Warn("no chart slide for increment", "event_id", ev.ID)
			return
		}

		before := e.ctrl.Current()
		e.ctrl.Show(idx, e.now())
		if e.ctrl.Current() != before {
			e.publishSlide()
		}

		entry, _ := e.ctrl.Pool().At(idx)
		inc, ok := entry.Slide.(slides.Incrementer)
		if !ok {
			e.logger.Warn("chart slide does not accept increments", "event_id", ev.ID)
			return
		}
		if err := inc.Increment(ev.BarID, ev.Val); err != nil {
			e.logger.Warn("increment failed", "event_id", ev.ID, "bar_id", ev.BarID, "error", err)
			return
		}
		e.publish(events.TopicEvent, ev)

	default:
		e.logger.Warn("unknown event type", "type", ev.Type, "event_id", ev.ID)
	}
}
