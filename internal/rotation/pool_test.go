package rotation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/rotation"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/testutil"
)

func cfg(tag string, duration int, kv ...any) models.SlideConfig {
	c := models.NewSlideConfig(tag, duration)
	for i := 0; i+1 < len(kv); i += 2 {
		c[kv[i].(string)] = kv[i+1]
	}
	return c
}

func newPool(t *testing.T) (*rotation.Pool, *testutil.FakeFactory) {
	t.Helper()
	f := &testutil.FakeFactory{}
	return rotation.NewPool(f.Registry(), 5), f
}

func TestPool_InitialBuild(t *testing.T) {
	p, f := newPool(t)

	res := p.Reconcile([]models.SlideConfig{cfg("chart", 10), cfg("text", 5)}, slides.Env{})
	assert.Equal(t, 0, res.MatchCount)
	assert.Equal(t, 2, res.Built)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 2, f.Count())
	assert.False(t, p.Changed([]models.SlideConfig{cfg("chart", 10), cfg("text", 5)}))
}

func TestPool_PreservesUnchangedPrefix(t *testing.T) {
	p, f := newPool(t)
	p.Reconcile([]models.SlideConfig{
		cfg("chart", 10),
		cfg("text", 5, "content", "a"),
		cfg("web", 8),
	}, slides.Env{})
	first, _ := p.At(0)

	res := p.Reconcile([]models.SlideConfig{
		cfg("chart", 10),
		cfg("text", 7, "content", "a"),
		cfg("web", 8),
	}, slides.Env{})

	assert.Equal(t, 1, res.MatchCount)
	assert.Equal(t, 2, res.Evicted)
	assert.Equal(t, 2, res.Built)
	assert.Equal(t, 5, f.Count())

	kept, _ := p.At(0)
	assert.Same(t, first.Slide, kept.Slide)
	assert.Equal(t, 0, f.Built[0].Cleanups)
	assert.Equal(t, 1, f.Built[1].Cleanups)
	assert.Equal(t, 1, f.Built[1].Stops)
	assert.Equal(t, 1, f.Built[2].Cleanups)

	second, _ := p.At(1)
	assert.Equal(t, 7, second.Config.Duration())
}

func TestPool_TailRemovalOnlyEvicts(t *testing.T) {
	p, f := newPool(t)
	p.Reconcile([]models.SlideConfig{cfg("chart", 10), cfg("text", 5), cfg("web", 8)}, slides.Env{})

	res := p.Reconcile([]models.SlideConfig{cfg("chart", 10), cfg("text", 5)}, slides.Env{})
	assert.Equal(t, 2, res.MatchCount)
	assert.Equal(t, 1, res.Evicted)
	assert.Equal(t, 0, res.Built)
	assert.Equal(t, 3, f.Count())
	assert.Equal(t, 2, p.Len())
}

func TestPool_PlaceholderAndRecovery(t *testing.T) {
	p, f := newPool(t)

	res := p.Reconcile(nil, slides.Env{})
	require.True(t, res.Placeholder)
	require.Equal(t, 1, p.Len())
	e, _ := p.At(0)
	assert.True(t, e.Placeholder())
	assert.Equal(t, 5, e.Config.Duration())
	assert.Equal(t, []string{"# No slides configured"}, e.Slide.Render().Lines)

	res = p.Reconcile([]models.SlideConfig{cfg("chart", 10)}, slides.Env{})
	assert.Equal(t, 0, res.MatchCount)
	assert.Equal(t, 1, res.Evicted)
	assert.Equal(t, 1, p.Len())
	e, _ = p.At(0)
	assert.False(t, e.Placeholder())
	assert.Equal(t, 1, f.Count())
}

func TestPool_UnknownTypesSkipped(t *testing.T) {
	p, _ := newPool(t)

	res := p.Reconcile([]models.SlideConfig{cfg("video", 3), cfg("chart", 10)}, slides.Env{})
	assert.Equal(t, 1, res.Skipped)
	require.Equal(t, 1, p.Len())
	e, _ := p.At(0)
	assert.Equal(t, 1, e.ConfigIndex)

	res = p.Reconcile([]models.SlideConfig{cfg("video", 3)}, slides.Env{})
	assert.True(t, res.Placeholder)
}

func TestPool_IndexOfType(t *testing.T) {
	p, _ := newPool(t)
	p.Reconcile([]models.SlideConfig{cfg("text", 5), cfg("chart", 10), cfg("chart", 3)}, slides.Env{})

	assert.Equal(t, 1, p.IndexOfType("chart"))
	assert.Equal(t, -1, p.IndexOfType("web"))
}

func TestPool_Close(t *testing.T) {
	p, f := newPool(t)
	p.Reconcile([]models.SlideConfig{cfg("text", 5), cfg("chart", 10)}, slides.Env{})

	p.Close()
	assert.Equal(t, 0, p.Len())
	for _, s := range f.Built {
		assert.Equal(t, 1, s.Cleanups)
	}
}
