package slides

import (
	"log/slog"

	"github.com/slide-scroller/overlay/internal/models"
)

const (
	blankURL       = "about:blank"
	defaultZoom    = 1.0
	defaultWebZoom = 0.8
)

// WebSlide embeds a web page. The surface owns the actual browser; the slide
// tracks which URL is loaded and at which zoom.
type WebSlide struct {
	Base

	cfg    models.SlideConfig
	logger *slog.Logger
	url    string
	zoom   float64
	loads  int
}

// NewWebSlide is the factory for the web type.
func NewWebSlide(cfg models.SlideConfig, env Env) (Slide, error) {
	s := &WebSlide{cfg: cfg.Clone(), logger: slog.With("component", "web_slide")}
	s.reload(env.doc())
	s.watchSettings(env.Bus, s.reload)
	return s, nil
}

func (s *WebSlide) Type() string { return models.SlideTypeWeb }

func (s *WebSlide) Render() View {
	return View{
		Type:  models.SlideTypeWeb,
		Title: s.url,
		Lines: []string{s.url},
		Pages: 1,
	}
}

// URL returns the loaded address.
func (s *WebSlide) URL() string { return s.url }

// Zoom returns the zoom factor.
func (s *WebSlide) Zoom() float64 { return s.zoom }

// Loads counts navigations, which only happen when the URL changes.
func (s *WebSlide) Loads() int { return s.loads }

func (s *WebSlide) reload(doc *models.Document) {
	url, zoom := blankURL, defaultZoom
	if s.cfg.Has("url") {
		url = s.cfg.String("url", blankURL)
		zoom = s.cfg.Float("zoom", defaultZoom)
	} else if web := doc.ActiveClass().Web; web != nil {
		url, zoom = web.URL, web.Zoom
		if url == "" {
			url = blankURL
		}
		if zoom <= 0 {
			zoom = defaultWebZoom
		}
	} else {
		zoom = defaultWebZoom
	}

	if url != s.url {
		s.url = url
		s.loads++
		s.logger.Debug("loading page", "url", url)
	}
	s.zoom = zoom
}
