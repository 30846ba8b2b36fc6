package overlay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/rotation"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/store"
)

const twoClassDocument = `{
	"global_config": {"width": 600, "height": 500, "x": 100, "y": 100, "current_class_id": "A"},
	"classes": {
		"A": {"bars": [1, 2], "active_slides": [{"type": "chart", "duration": 10}]},
		"B": {"bars": [3], "active_slides": [{"type": "text", "content": "b"}]}
	}
}`

func newFileEngine(t *testing.T, content string) (*Engine, *store.FileStore, *Headless) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	st, err := store.NewFileStore(path)
	require.NoError(t, err)

	surface := NewHeadless(Screen{Width: 1920, Height: 1080})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e, err := New(Options{
		Store:              st,
		Surface:            surface,
		Registry:           slides.NewRegistry(),
		TransitionDuration: rotation.DefaultTransitionDuration,
		Now:                func() time.Time { return now },
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, st, surface
}

func TestEngine_MalformedSlidesAreIsolated(t *testing.T) {
	e, st, surface := newFileEngine(t, twoClassDocument)
	require.Equal(t, 1, e.Controller().Pool().Len())

	edited := `{
		"global_config": {"width": 600, "height": 500, "x": 100, "y": 100, "current_class_id": "A",
			"visuals": {"font_size": 16.5}},
		"classes": {
			"A": {"bars": [1, 2], "active_slides": [
				{"type": "chart", "duration": 10},
				{"type": "web"},
				"oops"
			]},
			"B": {"bars": [3], "active_slides": [{"type": "text", "content": "b"}]}
		}
	}`
	require.NoError(t, os.WriteFile(st.Path(), []byte(edited), 0644))
	e.HandleFileChange()

	status := e.Status()
	require.Len(t, status.Slides, 2)
	assert.Equal(t, models.SlideTypeWeb, status.Slides[1].Type)

	surface.Move(300, 200)
	require.NoError(t, e.Shutdown())

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "A", doc.ActiveClassID())
	assert.Contains(t, doc.Classes, "B")
	assert.Equal(t, 300, doc.Global.X)
	assert.Len(t, doc.ActiveClass().ActiveSlides, 2)
	assert.Equal(t, 16, doc.Global.Visuals.FontSize)
}

func TestEngine_ShutdownLeavesCorruptDocument(t *testing.T) {
	e, st, surface := newFileEngine(t, twoClassDocument)

	broken := []byte(`{"global_config": {"width": 600,`)
	require.NoError(t, os.WriteFile(st.Path(), broken, 0644))
	e.HandleFileChange()
	assert.Equal(t, 1, e.Controller().Pool().Len())

	surface.Move(300, 200)
	require.NoError(t, e.Shutdown())

	data, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, string(broken), string(data))
}
