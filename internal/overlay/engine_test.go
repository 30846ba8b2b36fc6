package overlay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/rotation"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/store"
	"github.com/slide-scroller/overlay/internal/testutil"
)

type fixture struct {
	engine  *Engine
	store   *testutil.MemoryStore
	surface *Headless
	bus     *events.Bus
	now     time.Time
}

func slideList(entries ...models.SlideConfig) []models.SlideConfig { return entries }

func textSlide(duration int, msg string) models.SlideConfig {
	c := models.NewSlideConfig(models.SlideTypeText, duration)
	c["messages"] = []any{msg}
	return c
}

func newFixture(t *testing.T, mutate func(doc *models.Document)) *fixture {
	t.Helper()

	doc := models.DefaultDocument()
	if mutate != nil {
		mutate(doc)
	}

	f := &fixture{
		store:   testutil.NewMemoryStore(doc),
		surface: NewHeadless(Screen{Width: 1920, Height: 1080}),
		bus:     events.NewBus(),
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	e, err := New(Options{
		Store:              f.store,
		Surface:            f.surface,
		Bus:                f.bus,
		Registry:           slides.NewRegistry(),
		TransitionDuration: rotation.DefaultTransitionDuration,
		Now:                func() time.Time { return f.now },
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	f.engine = e
	return f
}

// edit mutates the stored document and delivers a change notification.
func (f *fixture) edit(t *testing.T, fn func(doc *models.Document)) {
	t.Helper()
	require.NoError(t, f.store.Update(func(doc *models.Document) error {
		fn(doc)
		return nil
	}))
	f.engine.HandleFileChange()
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.now = f.now.Add(time.Second)
		f.engine.Tick()
	}
}

func (f *fixture) record(topics ...events.Topic) *[]events.Message {
	var got []events.Message
	f.bus.Subscribe(func(m events.Message) { got = append(got, m) }, topics...)
	return &got
}

func TestNew_RestoresPersistedState(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.Global.X, doc.Global.Y = 40, 50
		cls := doc.EnsureActiveClass()
		cls.ActiveSlides = slideList(models.NewSlideConfig("chart", 10), textSlide(5, "hi"))
		cls.State.LockedSlide = 1
	})

	st := f.engine.Status()
	assert.Equal(t, rotation.StateLocked, st.State)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, "TRAVADO", st.Badge.Text)
	assert.Equal(t, models.Geometry{X: 40, Y: 50, Width: 600, Height: 500}, f.surface.Geometry())
	require.Len(t, st.Slides, 2)
	assert.Equal(t, "text", st.Slides[1].Type)
}

func TestNew_CorruptDocumentFallsBackToDefault(t *testing.T) {
	st := testutil.NewMemoryStore(nil)
	st.LoadErr = store.ErrCorrupt

	e, err := New(Options{Store: st, Surface: NewHeadless(Screen{Width: 800, Height: 600})})
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 1, e.Controller().Pool().Len())
	assert.Equal(t, models.SlideTypeChart, e.Status().Slides[0].Type)
}

func TestEngine_RotationScenario(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(models.NewSlideConfig("chart", 10), textSlide(5, "hi"))
	})
	slidesSeen := f.record(events.TopicSlide)

	f.ticks(10)
	st := f.engine.Status()
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, 5.0, st.RemainingSeconds)
	assert.Equal(t, "Próximo: 5s", st.Badge.Text)
	assert.True(t, st.Transitioning)

	f.ticks(5)
	st = f.engine.Status()
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 10.0, st.RemainingSeconds)
	assert.Len(t, *slidesSeen, 2)
}

func TestEngine_AnimateFinishesTransition(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(1, "a"), textSlide(1, "b"))
	})

	f.ticks(1)
	f.engine.Animate()
	frame := f.surface.LastFrame()
	require.True(t, frame.Transition.Active)
	require.NotNil(t, frame.Previous)
	assert.Equal(t, []string{"a"}, frame.Previous.Lines)
	assert.Equal(t, []string{"b"}, frame.Current.Lines)

	f.now = f.now.Add(time.Second)
	f.engine.Animate()
	frame = f.surface.LastFrame()
	assert.False(t, frame.Transition.Active)
	assert.Nil(t, frame.Previous)
}

func TestEngine_EditOfLaterSlideKeepsEarlierInstance(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(
			textSlide(10, "first"),
			textSlide(5, "second"),
		)
	})
	rebuilds := f.record(events.TopicRebuild)
	first, _ := f.engine.Controller().Pool().At(0)
	f.ticks(3)

	f.edit(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides[1]["duration"] = 8
	})

	kept, _ := f.engine.Controller().Pool().At(0)
	assert.Same(t, first.Slide, kept.Slide)
	assert.Equal(t, 7.0, f.engine.Status().RemainingSeconds)
	require.Len(t, *rebuilds, 1)
	assert.Equal(t, 1, (*rebuilds)[0].Payload.(rotation.ReconcileResult).MatchCount)

	second, _ := f.engine.Controller().Pool().At(1)
	assert.Equal(t, 8, second.Config.Duration())
}

func TestEngine_SettingsOnlyChange(t *testing.T) {
	f := newFixture(t, nil)
	settings := f.record(events.TopicSettings)
	rebuilds := f.record(events.TopicRebuild)

	f.edit(t, func(doc *models.Document) {
		doc.Global.Width, doc.Global.Height = 700, 400
	})

	assert.Len(t, *settings, 1)
	assert.Empty(t, *rebuilds)
	assert.Equal(t, 700, f.surface.Geometry().Width)
	assert.Equal(t, 400, f.surface.Geometry().Height)

	// A duplicate notification for the same content changes nothing.
	f.engine.HandleFileChange()
	assert.Len(t, *settings, 2)
	assert.Empty(t, *rebuilds)
}

func TestEngine_ClickThroughRecreatesSurface(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.Global.X, doc.Global.Y = 300, 200
	})

	f.edit(t, func(doc *models.Document) { doc.Global.ClickThrough = true })
	assert.Equal(t, 1, f.surface.Recreated())
	assert.True(t, f.surface.ClickThrough())
	assert.Equal(t, 300, f.surface.Geometry().X)
	assert.Equal(t, 200, f.surface.Geometry().Y)

	f.engine.HandleFileChange()
	assert.Equal(t, 1, f.surface.Recreated())
}

func TestEngine_LockCommandsPersist(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(10, "a"), textSlide(5, "b"), textSlide(5, "c"))
	})
	locks := f.record(events.TopicLock)

	require.NoError(t, f.engine.Lock(2))
	assert.Equal(t, 2, f.store.Document().ActiveClass().State.LockedSlide)
	assert.Equal(t, rotation.StateLocked, f.engine.Status().State)

	// The write comes back through the watcher without re-applying the lock.
	f.engine.HandleFileChange()
	assert.Len(t, *locks, 1)

	f.ticks(30)
	assert.Equal(t, 2, f.engine.Status().Current)

	require.NoError(t, f.engine.Unlock())
	assert.Equal(t, models.Unlocked, f.store.Document().ActiveClass().State.LockedSlide)
	assert.Equal(t, 5.0, f.engine.Status().RemainingSeconds)

	assert.ErrorIs(t, f.engine.Lock(3), ErrIndexOutOfRange)
}

func TestEngine_ExternalLockWins(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(10, "a"), textSlide(5, "b"))
	})

	f.edit(t, func(doc *models.Document) { doc.EnsureActiveClass().State.LockedSlide = 1 })
	assert.Equal(t, rotation.StateLocked, f.engine.Status().State)
	assert.Equal(t, 1, f.engine.Status().Current)

	f.edit(t, func(doc *models.Document) { doc.EnsureActiveClass().State.LockedSlide = models.Unlocked })
	assert.Equal(t, rotation.StateRunning, f.engine.Status().State)
	assert.Equal(t, 5.0, f.engine.Status().RemainingSeconds)
}

func TestEngine_LockBeyondPoolAfterShrink(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		cls := doc.EnsureActiveClass()
		cls.ActiveSlides = slideList(textSlide(10, "a"), textSlide(5, "b"), textSlide(5, "c"))
		cls.State.LockedSlide = 2
	})

	f.edit(t, func(doc *models.Document) {
		cls := doc.EnsureActiveClass()
		cls.ActiveSlides = cls.ActiveSlides[:2]
	})
	st := f.engine.Status()
	assert.Equal(t, rotation.StateRunning, st.State)
	assert.Equal(t, 0, st.Current)
}

func TestEngine_IncrementEventAppliedOnce(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(10, "a"), models.NewSlideConfig("chart", 10))
	})
	consumed := f.record(events.TopicEvent)

	f.edit(t, func(doc *models.Document) {
		doc.Global.LastEvent = &models.Event{Type: models.EventIncrement, Ts: 100, BarID: 0, Val: 3}
	})
	assert.Equal(t, 1, f.engine.Status().Current)
	assert.Equal(t, []float64{13, 20, 15}, f.store.Document().ActiveClass().Bars)
	assert.Len(t, *consumed, 1)
	assert.Equal(t, slides.EffectCelebrate, f.engine.Frame(f.now).Current.Effect)

	// Replays of the same timestamp are ignored.
	f.engine.HandleFileChange()
	f.edit(t, func(doc *models.Document) { doc.Global.LastEvent.Ts = 99 })
	assert.Equal(t, []float64{13, 20, 15}, f.store.Document().ActiveClass().Bars)

	f.edit(t, func(doc *models.Document) { doc.Global.LastEvent.Ts = 101 })
	assert.Equal(t, []float64{16, 20, 15}, f.store.Document().ActiveClass().Bars)
	assert.Len(t, *consumed, 2)
}

func TestEngine_StartupEventNotReplayed(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.Global.LastEvent = &models.Event{Type: models.EventIncrement, Ts: 50, BarID: 0, Val: 3}
	})

	f.engine.HandleFileChange()
	assert.Equal(t, []float64{10, 20, 15}, f.store.Document().ActiveClass().Bars)
}

func TestEngine_DockActionAndMargin(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.Global.TaskbarOffset = 40
	})

	f.edit(t, func(doc *models.Document) {
		doc.Global.DockAction = &models.DockAction{Pos: DockBottomRight, Ts: 1}
	})
	assert.Equal(t, 1300, f.surface.Geometry().X)
	assert.Equal(t, 520, f.surface.Geometry().Y)
	assert.Equal(t, DockBottomRight, f.engine.Status().Dock)
	assert.Equal(t, 1300, f.store.Document().Global.X)
	assert.Equal(t, "Próximo: 10s", f.engine.Status().Badge.Text)
	assert.Equal(t, BadgeTop, f.engine.Status().Badge.Vertical)

	f.edit(t, func(doc *models.Document) {
		m := 10
		doc.Global.DockMargin = &m
	})
	assert.Equal(t, 1310, f.surface.Geometry().X)
	assert.Equal(t, 530, f.surface.Geometry().Y)

	// Same dock timestamp again: no re-dock after a manual move.
	f.surface.Move(5, 5)
	f.engine.Undock()
	f.engine.HandleFileChange()
	assert.Equal(t, 5, f.surface.Geometry().X)
}

func TestEngine_ShutdownSavesOnlyChanges(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(2, "a"), textSlide(2, "b"))
	})
	saves := f.store.Saves()

	require.NoError(t, f.engine.Shutdown())
	assert.Equal(t, saves, f.store.Saves())

	f.ticks(2)
	f.surface.Move(10, 20)
	require.NoError(t, f.engine.Shutdown())
	assert.Equal(t, saves+1, f.store.Saves())

	doc := f.store.Document()
	assert.Equal(t, 10, doc.Global.X)
	assert.Equal(t, 1, doc.ActiveClass().State.LastSlideIndex)
}

func TestEngine_CorruptReloadKeepsState(t *testing.T) {
	f := newFixture(t, func(doc *models.Document) {
		doc.EnsureActiveClass().ActiveSlides = slideList(textSlide(10, "a"), textSlide(5, "b"))
	})
	f.ticks(10)

	f.store.LoadErr = store.ErrCorrupt
	f.engine.HandleFileChange()

	assert.Equal(t, 2, f.engine.Controller().Pool().Len())
	assert.Equal(t, 1, f.engine.Status().Current)
}

func TestEngine_EmptySlideListShowsPlaceholder(t *testing.T) {
	f := newFixture(t, nil)

	f.edit(t, func(doc *models.Document) { doc.EnsureActiveClass().ActiveSlides = nil })
	st := f.engine.Status()
	require.Len(t, st.Slides, 1)
	assert.True(t, st.Slides[0].Placeholder)
	assert.Equal(t, 5.0, st.RemainingSeconds)
}

func TestEngine_RunAndDo(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	var st Status
	require.NoError(t, f.engine.Do(context.Background(), func(e *Engine) error {
		st = e.Status()
		return nil
	}))
	assert.Equal(t, models.DefaultClassID, st.ClassID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not stop")
	}

	err := f.engine.Do(context.Background(), func(*Engine) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestEngine_RunRaisesSurface(t *testing.T) {
	surface := NewHeadless(Screen{Width: 800, Height: 600})
	e, err := New(Options{
		Store:             testutil.NewMemoryStore(nil),
		Surface:           surface,
		TickInterval:      time.Hour,
		FrameInterval:     time.Hour,
		KeepOnTopInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	assert.Eventually(t, func() bool { return surface.Raised() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
