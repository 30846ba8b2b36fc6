// fake_slide.go - Recording slide and factory for rotation tests
package testutil

import (
	"sync"
	"time"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/slides"
)

// FakeSlide records lifecycle calls.
type FakeSlide struct {
	Cfg      models.SlideConfig
	Starts   int
	Stops    int
	Cleanups int
	Ticked   time.Duration
}

func (f *FakeSlide) Type() string               { return f.Cfg.Type() }
func (f *FakeSlide) Start()                     { f.Starts++ }
func (f *FakeSlide) Stop()                      { f.Stops++ }
func (f *FakeSlide) Cleanup()                   { f.Cleanups++ }
func (f *FakeSlide) Tick(elapsed time.Duration) { f.Ticked += elapsed }

func (f *FakeSlide) Render() slides.View {
	return slides.View{Type: f.Cfg.Type(), Lines: []string{f.Cfg.String("content", "")}, Pages: 1}
}

// FakeFactory builds FakeSlides and remembers every one it built.
type FakeFactory struct {
	mu    sync.Mutex
	Built []*FakeSlide
}

// Registry returns a registry where the standard tags build fakes.
func (f *FakeFactory) Registry() *slides.Registry {
	r := slides.NewEmptyRegistry()
	for _, tag := range []string{
		models.SlideTypeChart,
		models.SlideTypeText,
		models.SlideTypeDeadline,
		models.SlideTypeWeb,
	} {
		r.Register(tag, f.Create)
	}
	return r
}

// Create is a slides.Factory.
func (f *FakeFactory) Create(cfg models.SlideConfig, _ slides.Env) (slides.Slide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := &FakeSlide{Cfg: cfg.Clone()}
	f.Built = append(f.Built, s)
	return s, nil
}

// Count returns how many slides were built.
func (f *FakeFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Built)
}
