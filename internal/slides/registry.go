package slides

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/slide-scroller/overlay/internal/models"
)

// ErrUnknownType is returned when no factory is registered for a type tag.
var ErrUnknownType = errors.New("unknown slide type")

// Factory builds a slide from its configuration entry.
type Factory func(cfg models.SlideConfig, env Env) (Slide, error)

// Registry maps slide type tags to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry returns a registry with the built-in slide types.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Register(models.SlideTypeChart, NewChartSlide)
	r.Register(models.SlideTypeText, NewTextSlide)
	r.Register(models.SlideTypeDeadline, NewDeadlineSlide)
	r.Register("deadlines", NewDeadlineSlide)
	r.Register(models.SlideTypeWeb, NewWebSlide)
	return r
}

// NewEmptyRegistry returns a registry with no factories.
func NewEmptyRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds or replaces the factory for tag.
func (r *Registry) Register(tag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(tag)] = f
}

// Create builds a slide for cfg.
func (r *Registry) Create(cfg models.SlideConfig, env Env) (Slide, error) {
	tag := strings.ToLower(cfg.Type())

	r.mu.RLock()
	f, ok := r.factories[tag]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type())
	}

	s, err := f(cfg, env)
	if err != nil {
		return nil, fmt.Errorf("building %s slide: %w", tag, err)
	}
	return s, nil
}

// Types returns the registered tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
