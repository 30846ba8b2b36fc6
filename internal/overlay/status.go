package overlay

import (
	"time"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/rotation"
	"github.com/slide-scroller/overlay/internal/slides"
)

// Frame is everything a surface needs to draw one refresh.
type Frame struct {
	Current    slides.View    `json:"current" msgpack:"current"`
	Previous   *slides.View   `json:"previous,omitempty" msgpack:"previous,omitempty"`
	Transition rotation.Frame `json:"transition" msgpack:"transition"`
	Badge      Badge          `json:"badge" msgpack:"badge"`
}

// SlideInfo describes one pool entry.
type SlideInfo struct {
	Index       int    `json:"index" msgpack:"index"`
	Type        string `json:"type" msgpack:"type"`
	Duration    int    `json:"duration" msgpack:"duration"`
	ConfigIndex int    `json:"config_index" msgpack:"config_index"`
	Placeholder bool   `json:"placeholder,omitempty" msgpack:"placeholder,omitempty"`
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	ClassID          string          `json:"class_id" msgpack:"class_id"`
	State            rotation.State  `json:"state" msgpack:"state"`
	Current          int             `json:"current" msgpack:"current"`
	LockedSlide      int             `json:"locked_slide" msgpack:"locked_slide"`
	RemainingSeconds float64         `json:"remaining_seconds" msgpack:"remaining_seconds"`
	Slides           []SlideInfo     `json:"slides" msgpack:"slides"`
	Badge            Badge           `json:"badge" msgpack:"badge"`
	Geometry         models.Geometry `json:"geometry" msgpack:"geometry"`
	ClickThrough     bool            `json:"clickthrough" msgpack:"clickthrough"`
	Dock             string          `json:"dock" msgpack:"dock"`
	Transitioning    bool            `json:"transitioning" msgpack:"transitioning"`
	StartedAt        time.Time       `json:"started_at" msgpack:"started_at"`
}

// Status returns a snapshot. Call it on the engine goroutine.
func (e *Engine) Status() Status {
	entries := e.ctrl.Pool().Entries()
	infos := make([]SlideInfo, 0, len(entries))
	for i, en := range entries {
		infos = append(infos, SlideInfo{
			Index:       i,
			Type:        en.Slide.Type(),
			Duration:    en.Config.Duration(),
			ConfigIndex: en.ConfigIndex,
			Placeholder: en.Placeholder(),
		})
	}

	return Status{
		ClassID:          e.doc.ActiveClassID(),
		State:            e.ctrl.State(),
		Current:          e.ctrl.Current(),
		LockedSlide:      e.ctrl.LockedIndex(),
		RemainingSeconds: e.ctrl.Remaining().Seconds(),
		Slides:           infos,
		Badge:            e.badge(),
		Geometry:         e.surface.Geometry(),
		ClickThrough:     e.surface.ClickThrough(),
		Dock:             e.dock,
		Transitioning:    e.ctrl.Transition().Active(),
		StartedAt:        e.started,
	}
}

// Frame returns what should be drawn at now. Call it on the engine goroutine.
func (e *Engine) Frame(now time.Time) Frame {
	f := Frame{
		Transition: e.ctrl.Transition().Frame(now),
		Badge:      e.badge(),
	}
	if s, ok := e.ctrl.CurrentSlide(); ok {
		f.Current = s.Render()
	}
	if f.Transition.Active {
		if prev, ok := e.ctrl.Pool().At(f.Transition.From); ok {
			v := prev.Slide.Render()
			f.Previous = &v
		}
	}
	return f
}

func (e *Engine) badge() Badge {
	return NewBadge(e.ctrl.Locked(), e.ctrl.Remaining(), e.dock)
}

// View returns the frame for the engine clock's current instant.
func (e *Engine) View() Frame {
	return e.Frame(e.now())
}
