// Package slides contains the slide content models and the registry that
// builds them from active_slides entries.
//
// A slide never draws pixels itself. It keeps the state a renderer needs
// (current message, page, effect) and exposes it through Render, which the
// host calls on every display refresh.
package slides

import (
	"time"

	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/store"
)

// Slide is a live, renderable slide instance.
type Slide interface {
	// Type returns the slide type tag.
	Type() string
	// Start enables internal animation while the slide is visible.
	Start()
	// Stop disables internal animation when the slide is hidden.
	Stop()
	// Cleanup releases resources before the instance is destroyed.
	Cleanup()
	// Tick advances internal content rotation by elapsed.
	Tick(elapsed time.Duration)
	// Render returns what should be on screen now.
	Render() View
}

// View is the renderable state of a slide.
type View struct {
	Type     string   `json:"type" msgpack:"type"`
	Title    string   `json:"title,omitempty" msgpack:"title,omitempty"`
	Lines    []string `json:"lines" msgpack:"lines"`
	Align    string   `json:"align,omitempty" msgpack:"align,omitempty"`
	Page     int      `json:"page" msgpack:"page"`
	Pages    int      `json:"pages" msgpack:"pages"`
	Effect   string   `json:"effect,omitempty" msgpack:"effect,omitempty"`
	Inverted bool     `json:"inverted,omitempty" msgpack:"inverted,omitempty"`
}

// Env carries what a factory needs to build a slide.
type Env struct {
	Bus   *events.Bus
	Store store.Store
	Doc   *models.Document
	Now   func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) doc() *models.Document {
	if e.Doc != nil {
		return e.Doc
	}
	return models.EmptyDocument()
}

// Base provides no-op lifecycle hooks so every variant is uniformly callable,
// and owns the settings subscription of the slide.
type Base struct {
	running bool
	sub     *events.Subscription
}

func (b *Base) Start()               { b.running = true }
func (b *Base) Stop()                { b.running = false }
func (b *Base) Tick(_ time.Duration) {}
func (b *Base) Running() bool        { return b.running }

// Cleanup stops the slide and drops its bus subscription.
func (b *Base) Cleanup() {
	b.running = false
	if b.sub != nil {
		b.sub.Unsubscribe()
		b.sub = nil
	}
}

// watchSettings calls reload with every new settings document.
func (b *Base) watchSettings(bus *events.Bus, reload func(*models.Document)) {
	if bus == nil {
		return
	}
	b.sub = bus.Subscribe(func(m events.Message) {
		if m.Document != nil {
			reload(m.Document)
		}
	}, events.TopicSettings)
}
