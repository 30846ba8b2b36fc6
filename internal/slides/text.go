package slides

import (
	"time"

	"github.com/slide-scroller/overlay/internal/models"
)

const (
	emptyMessage       = "# Vazio"
	placeholderMessage = "# No slides configured"
)

// TextSlide shows markdown messages, rotating through them while visible.
type TextSlide struct {
	Base

	cfg      models.SlideConfig
	notices  bool
	messages []string
	current  int
	locked   int
	itemDur  time.Duration
	elapsed  time.Duration
	inverted bool
}

// NewTextSlide is the factory for the text type. An entry with neither
// messages nor content shows the class notices; an empty list shows a single
// empty marker.
func NewTextSlide(cfg models.SlideConfig, env Env) (Slide, error) {
	notices := !cfg.Has("messages") && !cfg.Has("content")
	s := &TextSlide{cfg: cfg.Clone(), notices: notices, locked: models.Unlocked}
	s.reload(env.doc())
	s.watchSettings(env.Bus, s.reload)
	return s, nil
}

// NewPlaceholderSlide builds the slide shown when no configured slide could
// be built.
func NewPlaceholderSlide(duration int, env Env) Slide {
	cfg := models.NewSlideConfig(models.SlideTypeText, duration)
	cfg["messages"] = []any{placeholderMessage}
	s, _ := NewTextSlide(cfg, env)
	return s
}

func (s *TextSlide) Type() string { return models.SlideTypeText }

// Start resets the message timer.
func (s *TextSlide) Start() {
	s.Base.Start()
	s.elapsed = 0
}

// Tick rotates messages unless a message is pinned.
func (s *TextSlide) Tick(elapsed time.Duration) {
	if !s.Running() || s.locked >= 0 || len(s.messages) < 2 || s.itemDur <= 0 {
		return
	}
	s.elapsed += elapsed
	for s.elapsed >= s.itemDur {
		s.elapsed -= s.itemDur
		s.current = (s.current + 1) % len(s.messages)
	}
}

func (s *TextSlide) Render() View {
	v := View{
		Type:     models.SlideTypeText,
		Align:    "center",
		Page:     s.current,
		Pages:    len(s.messages),
		Inverted: s.inverted,
	}
	if len(s.messages) > 0 {
		v.Lines = []string{s.messages[s.current]}
	}
	return v
}

// Messages returns the resolved message list.
func (s *TextSlide) Messages() []string {
	return append([]string(nil), s.messages...)
}

func (s *TextSlide) reload(doc *models.Document) {
	cls := doc.ActiveClass()

	switch {
	case s.notices:
		s.messages = s.messages[:0]
		for _, n := range cls.Notices {
			s.messages = append(s.messages, models.MessageText(n))
		}
	default:
		s.messages = s.cfg.Messages()
	}
	if len(s.messages) == 0 {
		s.messages = []string{emptyMessage}
	}

	total := time.Duration(s.cfg.Duration()) * time.Second
	s.itemDur = total / time.Duration(len(s.messages))

	s.locked = cls.State.LockedNotice
	if s.locked >= len(s.messages) {
		s.locked = models.Unlocked
	}
	if s.locked >= 0 {
		s.current = s.locked
		s.elapsed = 0
	}
	if s.current >= len(s.messages) {
		s.current = 0
	}
	s.inverted = doc.Global.ColorInverted
}
