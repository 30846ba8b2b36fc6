package slides_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slide-scroller/overlay/internal/events"
	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/slides"
	"github.com/slide-scroller/overlay/internal/testutil"
)

func textConfig(duration int, messages ...any) models.SlideConfig {
	cfg := models.NewSlideConfig(models.SlideTypeText, duration)
	cfg["messages"] = messages
	return cfg
}

func TestTextSlide_Rotation(t *testing.T) {
	s, err := slides.NewTextSlide(textConfig(9, "a", map[string]any{"content": "b"}, "c"), slides.Env{})
	require.NoError(t, err)

	// Not visible: no rotation.
	s.Tick(10 * time.Second)
	assert.Equal(t, []string{"a"}, s.Render().Lines)

	s.Start()
	s.Tick(2 * time.Second)
	assert.Equal(t, []string{"a"}, s.Render().Lines)
	s.Tick(time.Second)
	assert.Equal(t, []string{"b"}, s.Render().Lines)
	s.Tick(6 * time.Second)
	assert.Equal(t, []string{"a"}, s.Render().Lines)
	assert.Equal(t, 3, s.Render().Pages)
}

func TestTextSlide_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.SlideConfig
		want []string
	}{
		{"legacy content", models.SlideConfig{"type": "text", "content": "# Hi"}, []string{"# Hi"}},
		{"no messages uses notices", models.NewSlideConfig("text", 5), []string{"# Welcome"}},
		{"no entry uses notices", nil, []string{"# Welcome"}},
		{"empty messages", models.SlideConfig{"type": "text", "messages": []any{}}, []string{"# Vazio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := slides.NewTextSlide(tt.cfg, slides.Env{Doc: models.DefaultDocument()})
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.(*slides.TextSlide).Messages())
		})
	}
}

func TestTextSlide_LockedNotice(t *testing.T) {
	doc := models.DefaultDocument()
	doc.EnsureActiveClass().State.LockedNotice = 1

	s, err := slides.NewTextSlide(textConfig(4, "a", "b"), slides.Env{Doc: doc})
	require.NoError(t, err)

	s.Start()
	s.Tick(time.Minute)
	assert.Equal(t, []string{"b"}, s.Render().Lines)
}

func TestPlaceholderSlide(t *testing.T) {
	s := slides.NewPlaceholderSlide(5, slides.Env{Doc: models.DefaultDocument()})
	assert.Equal(t, models.SlideTypeText, s.Type())
	assert.Equal(t, []string{"# No slides configured"}, s.Render().Lines)
}

func TestSlide_ReloadsOnSettingsAndCleanup(t *testing.T) {
	bus := events.NewBus()
	s, err := slides.NewTextSlide(nil, slides.Env{Bus: bus, Doc: models.DefaultDocument()})
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Stats().Subscribers)

	doc := models.DefaultDocument()
	doc.EnsureActiveClass().Notices = []any{"x", "y"}
	bus.Publish(events.Message{Topic: events.TopicSettings, Document: doc})
	assert.Equal(t, []string{"x", "y"}, s.(*slides.TextSlide).Messages())

	s.Cleanup()
	assert.Equal(t, 0, bus.Stats().Subscribers)
}

func TestDeadlineSlide_ParseSortAndStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	doc := models.DefaultDocument()
	doc.EnsureActiveClass().Deadlines = []models.Deadline{
		{Task: "late", Date: "20/03/2024"},
		{Task: "bad", Date: "not a date"},
		{Task: "soon", Date: "2024-03-05"},
		{Task: "gone", Date: "10/02/2024"},
		{Task: "mid", Date: "12/03/2024"},
	}

	s, err := slides.NewDeadlineSlide(models.NewSlideConfig("deadline", 10), slides.Env{
		Doc: doc,
		Now: func() time.Time { return now },
	})
	require.NoError(t, err)

	rows := s.(*slides.DeadlineSlide).Rows()
	require.Len(t, rows, 4)

	assert.Equal(t, "gone", rows[0].Task)
	assert.Equal(t, "Expirado", rows[0].Label)
	assert.Equal(t, slides.ColorGray, rows[0].Color)

	assert.Equal(t, "soon", rows[1].Task)
	assert.Equal(t, 4, rows[1].Days)
	assert.Equal(t, slides.ColorRed, rows[1].Color)

	assert.Equal(t, "mid", rows[2].Task)
	assert.Equal(t, slides.ColorOrange, rows[2].Color)

	assert.Equal(t, "late", rows[3].Task)
	assert.Equal(t, "19 dias", rows[3].Label)
	assert.Equal(t, slides.ColorGreen, rows[3].Color)
	assert.Equal(t, "Prazos", s.Render().Title)
}

func TestDeadlineSlide_SingleEntryFromConfig(t *testing.T) {
	cfg := models.NewSlideConfig("deadline", 10)
	cfg["date"] = "01/01/2030"
	cfg["title"] = "Exam"

	s, err := slides.NewDeadlineSlide(cfg, slides.Env{Doc: models.DefaultDocument()})
	require.NoError(t, err)

	entries := s.(*slides.DeadlineSlide).Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Exam", entries[0].Task)
}

func TestDeadlineSlide_Pagination(t *testing.T) {
	doc := models.DefaultDocument()
	doc.Global.Height = 240 // (240-140)/45 = 2 rows per page
	for i := 1; i <= 5; i++ {
		doc.EnsureActiveClass().Deadlines = append(doc.EnsureActiveClass().Deadlines,
			models.Deadline{Task: "t", Date: "2030-01-0" + string(rune('0'+i))})
	}

	s, err := slides.NewDeadlineSlide(models.NewSlideConfig("deadline", 6), slides.Env{Doc: doc})
	require.NoError(t, err)
	d := s.(*slides.DeadlineSlide)

	assert.Equal(t, 2, d.PerPage())
	assert.Equal(t, 3, s.Render().Pages)

	s.Start()
	s.Tick(2 * time.Second)
	assert.Equal(t, 0, s.Render().Page)
	s.Tick(time.Second) // pages last max(3s, 6s/3)
	assert.Equal(t, 1, s.Render().Page)
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, slides.DaysLeft(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 1, slides.DaysLeft(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -1, slides.DaysLeft(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), now))
}

func TestChartSlide_Increment(t *testing.T) {
	st := testutil.NewMemoryStore(nil)
	doc, err := st.Load()
	require.NoError(t, err)

	s, err := slides.NewChartSlide(models.NewSlideConfig("chart", 10), slides.Env{Store: st, Doc: doc})
	require.NoError(t, err)
	chart := s.(*slides.ChartSlide)

	require.NoError(t, chart.Increment(1, 5))
	assert.Equal(t, []float64{10, 25, 15}, chart.Bars())
	assert.Equal(t, []float64{10, 25, 15}, st.Document().ActiveClass().Bars)
	assert.Equal(t, slides.EffectCelebrate, s.Render().Effect)

	s.Tick(5 * time.Second)
	assert.Empty(t, s.Render().Effect)

	err = chart.Increment(7, 1)
	assert.ErrorIs(t, err, slides.ErrBarOutOfRange)
	assert.Equal(t, 1, st.Saves())
}

func TestChartSlide_DefaultBars(t *testing.T) {
	s, err := slides.NewChartSlide(nil, slides.Env{Doc: models.EmptyDocument()})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, s.(*slides.ChartSlide).Bars())
	assert.Len(t, s.Render().Lines, 1)
}

func TestWebSlide(t *testing.T) {
	bus := events.NewBus()
	doc := models.DefaultDocument()
	doc.EnsureActiveClass().Web = &models.WebDefaults{URL: "https://example.com", Zoom: 0.8}

	s, err := slides.NewWebSlide(models.NewSlideConfig("web", 10), slides.Env{Bus: bus, Doc: doc})
	require.NoError(t, err)
	web := s.(*slides.WebSlide)
	assert.Equal(t, "https://example.com", web.URL())
	assert.Equal(t, 0.8, web.Zoom())

	// Same URL: no reload.
	bus.Publish(events.Message{Topic: events.TopicSettings, Document: doc})
	assert.Equal(t, 1, web.Loads())

	cfg := models.NewSlideConfig("web", 10)
	cfg["url"] = "https://go.dev"
	s2, err := slides.NewWebSlide(cfg, slides.Env{Doc: doc})
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", s2.(*slides.WebSlide).URL())
	assert.Equal(t, 1.0, s2.(*slides.WebSlide).Zoom())
}
