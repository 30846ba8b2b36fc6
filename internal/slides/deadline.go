package slides

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/slide-scroller/overlay/internal/models"
)

// Row colors of the deadline table.
const (
	ColorRed        = "#ff5555"
	ColorOrange     = "#ffb86c"
	ColorGreen      = "#50fa7b"
	ColorGray       = "#6272a4"
	ColorDarkGreen  = "#006400"
	ColorDarkYellow = "#b58900"
)

const (
	deadlineTitle      = "Prazos"
	deadlineFontSize   = 18
	deadlineChrome     = 140
	minRowHeight       = 30.0
	minPageDuration    = 3 * time.Second
	defaultDeadlineKey = "Deadline"
)

var deadlineLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02T15:04:05.999999999",
}

// DeadlineEntry is one parsed row.
type DeadlineEntry struct {
	Task string
	Date time.Time
}

// DeadlineRow is a rendered row with its countdown.
type DeadlineRow struct {
	Task  string
	Date  string
	Label string
	Color string
	Days  int
}

// DeadlineSlide lists upcoming deadlines, paging when they do not fit.
type DeadlineSlide struct {
	Base

	cfg      models.SlideConfig
	now      func() time.Time
	entries  []DeadlineEntry
	perPage  int
	pages    int
	page     int
	pageDur  time.Duration
	elapsed  time.Duration
	inverted bool
}

// NewDeadlineSlide is the factory for the deadline type.
func NewDeadlineSlide(cfg models.SlideConfig, env Env) (Slide, error) {
	s := &DeadlineSlide{cfg: cfg.Clone(), now: env.now}
	s.reload(env.doc())
	s.watchSettings(env.Bus, s.reload)
	return s, nil
}

func (s *DeadlineSlide) Type() string { return models.SlideTypeDeadline }

// Tick flips pages while visible.
func (s *DeadlineSlide) Tick(elapsed time.Duration) {
	if !s.Running() || s.pages < 2 {
		return
	}
	s.elapsed += elapsed
	for s.elapsed >= s.pageDur {
		s.elapsed -= s.pageDur
		s.page = (s.page + 1) % s.pages
	}
}

func (s *DeadlineSlide) Render() View {
	rows := s.Rows()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", r.Task, r.Date, r.Label))
	}
	return View{
		Type:     models.SlideTypeDeadline,
		Title:    deadlineTitle,
		Lines:    lines,
		Align:    "left",
		Page:     s.page,
		Pages:    s.pages,
		Inverted: s.inverted,
	}
}

// Rows returns the rows of the current page.
func (s *DeadlineSlide) Rows() []DeadlineRow {
	start := s.page * s.perPage
	if start >= len(s.entries) {
		return nil
	}
	end := min(start+s.perPage, len(s.entries))

	now := s.now()
	rows := make([]DeadlineRow, 0, end-start)
	for _, e := range s.entries[start:end] {
		days := DaysLeft(e.Date, now)
		label, color := s.status(days)
		rows = append(rows, DeadlineRow{
			Task:  e.Task,
			Date:  e.Date.Format("02/01/2006"),
			Label: label,
			Color: color,
			Days:  days,
		})
	}
	return rows
}

// Entries returns the parsed, sorted deadlines.
func (s *DeadlineSlide) Entries() []DeadlineEntry {
	return append([]DeadlineEntry(nil), s.entries...)
}

// PerPage returns how many rows fit on a page.
func (s *DeadlineSlide) PerPage() int { return s.perPage }

func (s *DeadlineSlide) status(days int) (string, string) {
	label := fmt.Sprintf("%d dias", days)
	switch {
	case days < 0:
		return "Expirado", ColorGray
	case days <= 7:
		return label, ColorRed
	case days <= 15:
		if s.inverted {
			return label, ColorDarkYellow
		}
		return label, ColorOrange
	case s.inverted:
		return label, ColorDarkGreen
	default:
		return label, ColorGreen
	}
}

func (s *DeadlineSlide) reload(doc *models.Document) {
	var raw []models.Deadline
	if s.cfg.Has("date") {
		raw = []models.Deadline{{
			Task: s.cfg.String("title", defaultDeadlineKey),
			Date: s.cfg.String("date", ""),
		}}
	} else {
		raw = doc.ActiveClass().Deadlines
	}

	s.entries = s.entries[:0]
	for _, d := range raw {
		t, ok := ParseDeadlineDate(d.Date)
		if !ok {
			continue
		}
		s.entries = append(s.entries, DeadlineEntry{Task: d.Task, Date: t})
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Date.Before(s.entries[j].Date)
	})

	rowHeight := math.Max(minRowHeight, float64(doc.Global.Visuals.FontSizeOr(deadlineFontSize))*2.5)
	s.perPage = max(1, int(float64(doc.Global.Height-deadlineChrome)/rowHeight))
	s.pages = max(1, (len(s.entries)+s.perPage-1)/s.perPage)

	total := time.Duration(s.cfg.Duration()) * time.Second
	s.pageDur = max(minPageDuration, total/time.Duration(s.pages))
	s.page = 0
	s.elapsed = 0
	s.inverted = doc.Global.ColorInverted
}

// ParseDeadlineDate accepts DD/MM/YYYY and ISO dates.
func ParseDeadlineDate(v string) (time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysLeft counts started days until date; negative once it has passed.
func DaysLeft(date, now time.Time) int {
	return int(math.Floor(date.Sub(now).Hours()/24)) + 1
}
