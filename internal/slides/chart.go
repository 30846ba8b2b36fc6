package slides

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/store"
)

// ErrBarOutOfRange is returned when an increment names a bar that does not exist.
var ErrBarOutOfRange = errors.New("bar index out of range")

// BarColors cycle across bars.
var BarColors = []string{"#ff007f", "#00e5ff", "#ffcc00", "#bd93f9", "#50fa7b"}

const (
	// EffectCelebrate is the view effect raised after an increment.
	EffectCelebrate   = "celebrate"
	celebrateDuration = 4 * time.Second
	barWidth          = 20
)

var defaultBars = []float64{5}

// Incrementer is implemented by slides that accept bar increments.
type Incrementer interface {
	Increment(barID int, val float64) error
}

// ChartSlide shows the bar values of the active class.
type ChartSlide struct {
	Base

	store     store.Store
	logger    *slog.Logger
	bars      []float64
	celebrate time.Duration
	inverted  bool
}

// NewChartSlide is the factory for the chart type.
func NewChartSlide(_ models.SlideConfig, env Env) (Slide, error) {
	s := &ChartSlide{
		store:  env.Store,
		logger: slog.With("component", "chart_slide"),
	}
	s.reload(env.doc())
	s.watchSettings(env.Bus, s.reload)
	return s, nil
}

func (s *ChartSlide) Type() string { return models.SlideTypeChart }

// Tick runs down the celebration effect.
func (s *ChartSlide) Tick(elapsed time.Duration) {
	if s.celebrate > 0 {
		s.celebrate = max(0, s.celebrate-elapsed)
	}
}

// Increment adds val to a bar, persists it and starts the celebration.
func (s *ChartSlide) Increment(barID int, val float64) error {
	if barID < 0 || barID >= len(s.bars) {
		s.logger.Warn("ignoring increment", "bar_id", barID, "bars", len(s.bars))
		return fmt.Errorf("%w: %d", ErrBarOutOfRange, barID)
	}

	if s.store != nil {
		err := s.store.Update(func(doc *models.Document) error {
			cls := doc.EnsureActiveClass()
			if barID >= len(cls.Bars) {
				return fmt.Errorf("%w: %d", ErrBarOutOfRange, barID)
			}
			cls.Bars[barID] += val
			return nil
		})
		if err != nil {
			return fmt.Errorf("persisting bar %d: %w", barID, err)
		}
	}

	s.bars[barID] += val
	s.celebrate = celebrateDuration
	s.logger.Info("bar incremented", "bar_id", barID, "val", val, "value", s.bars[barID])
	return nil
}

// Bars returns the displayed values.
func (s *ChartSlide) Bars() []float64 {
	return append([]float64(nil), s.bars...)
}

// Celebrating reports whether the celebration effect is showing.
func (s *ChartSlide) Celebrating() bool { return s.celebrate > 0 }

func (s *ChartSlide) Render() View {
	peak := 0.0
	for _, b := range s.bars {
		peak = max(peak, b)
	}

	lines := make([]string, 0, len(s.bars))
	for i, b := range s.bars {
		n := 0
		if peak > 0 && b > 0 {
			n = max(1, int(b/peak*barWidth))
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			BarColors[i%len(BarColors)],
			strings.Repeat("#", n),
			strconv.FormatFloat(b, 'f', -1, 64)))
	}

	v := View{
		Type:     models.SlideTypeChart,
		Lines:    lines,
		Align:    "center",
		Pages:    1,
		Inverted: s.inverted,
	}
	if s.Celebrating() {
		v.Effect = EffectCelebrate
	}
	return v
}

func (s *ChartSlide) reload(doc *models.Document) {
	bars := doc.ActiveClass().Bars
	if len(bars) == 0 {
		bars = defaultBars
	}
	s.bars = append(s.bars[:0], bars...)
	s.inverted = doc.Global.ColorInverted
}
