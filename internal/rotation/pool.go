// Package rotation owns the live slide pool, its reconciliation against the
// configured slide list, and the lock/rotate state machine driving it.
package rotation

import (
	"log/slog"
	"time"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/slides"
)

// PlaceholderIndex marks the synthetic entry shown when nothing could be built.
const PlaceholderIndex = -1

// DefaultPlaceholderDuration is how long the placeholder is shown, in seconds.
const DefaultPlaceholderDuration = 5

// Entry is one live slide and the configuration it was built from.
type Entry struct {
	Slide       slides.Slide
	Config      models.SlideConfig
	ConfigIndex int
}

// Duration returns the configured display time.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.Config.Duration()) * time.Second
}

// Placeholder reports whether this is the synthetic empty-pool entry.
func (e Entry) Placeholder() bool {
	return e.ConfigIndex == PlaceholderIndex
}

// ReconcileResult describes what a reconciliation did.
type ReconcileResult struct {
	MatchCount  int
	Evicted     int
	Built       int
	Skipped     int
	Placeholder bool
}

// Pool is the ordered list of live slides. Entries built from an unchanged
// prefix of the configuration survive every reconciliation untouched.
type Pool struct {
	registry            *slides.Registry
	placeholderDuration int
	entries             []Entry
	lastLoaded          []models.SlideConfig
	logger              *slog.Logger
}

// NewPool creates an empty pool that builds slides through registry.
func NewPool(registry *slides.Registry, placeholderDuration int) *Pool {
	if registry == nil {
		registry = slides.GetGlobalRegistry()
	}
	if placeholderDuration < 1 {
		placeholderDuration = DefaultPlaceholderDuration
	}
	return &Pool{
		registry:            registry,
		placeholderDuration: placeholderDuration,
		logger:              slog.With("component", "slide_pool"),
	}
}

// Len returns the number of live entries.
func (p *Pool) Len() int { return len(p.entries) }

// At returns the entry at i.
func (p *Pool) At(i int) (Entry, bool) {
	if i < 0 || i >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Entries returns a copy of the entry list.
func (p *Pool) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Changed reports whether configs differs from the baseline.
func (p *Pool) Changed(configs []models.SlideConfig) bool {
	return !models.SlidesEqual(p.lastLoaded, configs)
}

// IndexOfType returns the first position holding a slide of the given type.
func (p *Pool) IndexOfType(tag string) int {
	for i, e := range p.entries {
		if e.Slide.Type() == tag {
			return i
		}
	}
	return -1
}

// MatchCount is the length of the common prefix of the baseline and configs.
// A pool holding only the placeholder has no prefix to keep.
func (p *Pool) MatchCount(configs []models.SlideConfig) int {
	if len(p.lastLoaded) == 0 && len(p.entries) > 0 {
		return 0
	}
	n := min(len(p.lastLoaded), len(configs))
	i := 0
	for i < n && p.lastLoaded[i].Equal(configs[i]) {
		i++
	}
	return i
}

// Reconcile brings the pool in line with configs. Entries built from the
// first MatchCount configurations are kept as they are; everything after is
// stopped, cleaned up and rebuilt. Entries with an unknown type are skipped.
func (p *Pool) Reconcile(configs []models.SlideConfig, env slides.Env) ReconcileResult {
	res := ReconcileResult{MatchCount: p.MatchCount(configs)}

	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.ConfigIndex >= 0 && e.ConfigIndex < res.MatchCount {
			kept = append(kept, e)
			continue
		}
		e.Slide.Stop()
		e.Slide.Cleanup()
		res.Evicted++
	}
	for i := len(kept); i < len(p.entries); i++ {
		p.entries[i] = Entry{}
	}
	p.entries = kept

	for i := res.MatchCount; i < len(configs); i++ {
		cfg := configs[i].Clone()
		s, err := p.registry.Create(cfg, env)
		if err != nil {
			p.logger.Warn("skipping slide", "index", i, "type", cfg.Type(), "error", err)
			res.Skipped++
			continue
		}
		p.entries = append(p.entries, Entry{Slide: s, Config: cfg, ConfigIndex: i})
		res.Built++
	}

	if len(p.entries) == 0 {
		cfg := models.NewSlideConfig(models.SlideTypeText, p.placeholderDuration)
		p.entries = append(p.entries, Entry{
			Slide:       slides.NewPlaceholderSlide(p.placeholderDuration, env),
			Config:      cfg,
			ConfigIndex: PlaceholderIndex,
		})
		res.Placeholder = true
	}

	p.lastLoaded = models.CloneSlides(configs)

	p.logger.Debug("pool reconciled",
		"match_count", res.MatchCount,
		"evicted", res.Evicted,
		"built", res.Built,
		"skipped", res.Skipped,
		"size", len(p.entries))
	return res
}

// Close stops and cleans up every entry.
func (p *Pool) Close() {
	for _, e := range p.entries {
		e.Slide.Stop()
		e.Slide.Cleanup()
	}
	p.entries = nil
	p.lastLoaded = nil
}
