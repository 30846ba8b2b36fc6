package models

import (
	"bytes"
	"encoding/json"
)

// Slide type tags.
const (
	SlideTypeWeb      = "web"
	SlideTypeText     = "text"
	SlideTypeDeadline = "deadline"
	SlideTypeChart    = "chart"
)

// DefaultSlideDuration is used when a slide has no duration.
const DefaultSlideDuration = 10

// SlideConfig is one entry of active_slides. It is kept as a generic JSON
// object so that equality covers every key, including ones added by newer
// tools.
type SlideConfig map[string]any

// NewSlideConfig creates a slide entry of the given type.
func NewSlideConfig(slideType string, duration int) SlideConfig {
	return SlideConfig{"type": slideType, "duration": duration}
}

// Type returns the slide type tag.
func (s SlideConfig) Type() string {
	return s.String("type", "")
}

// Duration returns the configured seconds on screen, at least 1.
func (s SlideConfig) Duration() int {
	d := int(s.Float("duration", DefaultSlideDuration))
	if d < 1 {
		return 1
	}
	return d
}

// Has reports whether key is present.
func (s SlideConfig) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// String returns a string member or def.
func (s SlideConfig) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Float returns a numeric member or def.
func (s SlideConfig) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// Messages returns the text items of a text slide. Items may be plain strings
// or objects with a content member; the legacy single content field is also
// accepted. Returns nil when neither is present.
func (s SlideConfig) Messages() []string {
	if raw, ok := s["messages"].([]any); ok {
		out := make([]string, 0, len(raw))
		for _, m := range raw {
			out = append(out, MessageText(m))
		}
		return out
	}
	if raw, ok := s["messages"].([]string); ok {
		return append([]string(nil), raw...)
	}
	if s.Has("content") {
		return []string{s.String("content", "")}
	}
	return nil
}

// MessageText extracts the text of a message or notice item.
func MessageText(m any) string {
	switch v := m.(type) {
	case string:
		return v
	case map[string]any:
		if c, ok := v["content"].(string); ok {
			return c
		}
	}
	return ""
}

// Equal compares two entries structurally. Numbers compare by value, so an
// entry built in code with ints equals the same entry decoded from JSON.
func (s SlideConfig) Equal(other SlideConfig) bool {
	a, errA := json.Marshal(s)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Clone returns a deep copy.
func (s SlideConfig) Clone() SlideConfig {
	data, err := json.Marshal(s)
	if err != nil {
		return SlideConfig{}
	}
	var out SlideConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return SlideConfig{}
	}
	return out
}

// SlidesEqual compares two active_slides lists entry by entry.
func SlidesEqual(a, b []SlideConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// CloneSlides deep-copies a list.
func CloneSlides(in []SlideConfig) []SlideConfig {
	if in == nil {
		return nil
	}
	out := make([]SlideConfig, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
