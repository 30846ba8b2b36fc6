// Package models contains the shared configuration document of the slide overlay.
package models

import (
	"encoding/json"
)

// DefaultClassID is the profile used when the document names none.
const DefaultClassID = "Geral"

// Document is the root of the shared JSON file.
type Document struct {
	Global  GlobalConfig            `json:"global_config"`
	Classes map[string]*ClassRecord `json:"classes"`

	Extra map[string]json.RawMessage `json:"-"`
}

// GlobalConfig holds window geometry and overlay-wide settings.
type GlobalConfig struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	X              int         `json:"x"`
	Y              int         `json:"y"`
	CurrentClassID string      `json:"current_class_id"`
	ClickThrough   bool        `json:"clickthrough"`
	ColorInverted  bool        `json:"color_inverted,omitempty"`
	Visuals        Visuals     `json:"visuals"`
	DockAction     *DockAction `json:"dock_action,omitempty"`
	DockMargin     *int        `json:"dock_margin,omitempty"`
	TaskbarOffset  int         `json:"taskbar_offset,omitempty"`
	LastEvent      *Event      `json:"last_event,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Visuals are cosmetic settings consumed by the border painter and renderers.
type Visuals struct {
	BreathingIntensity float64 `json:"breathing_intensity"`
	BarAlpha           float64 `json:"bar_alpha"`
	FontFamily         string  `json:"font_family"`
	FontSize           int     `json:"font_size,omitempty"`
	RoughSlide         float64 `json:"rough_slide"`
	BorderRadius       float64 `json:"border_radius"`
	AnimationEnabled   bool    `json:"animation_enabled"`
	RoughLegend        float64 `json:"rough_legend,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// DockAction asks the overlay to snap to a screen corner. Ts makes it one-shot.
type DockAction struct {
	Pos string  `json:"pos"`
	Ts  float64 `json:"ts"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Event is a one-shot directive, applied at most once per distinct Ts.
type Event struct {
	Type  string  `json:"type"`
	Ts    float64 `json:"ts"`
	ID    string  `json:"id,omitempty"`
	BarID int     `json:"bar_id,omitempty"`
	Val   float64 `json:"val,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Event types understood by the overlay.
const (
	EventIncrement = "inc"
)

// Geometry is a window rectangle.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultDockMargin applies when dock_margin is absent.
const DefaultDockMargin = 20

// DefaultGlobalConfig returns the values used for missing global fields.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Width:          600,
		Height:         500,
		X:              100,
		Y:              100,
		CurrentClassID: DefaultClassID,
		Visuals:        DefaultVisuals(),
	}
}

// DefaultVisuals returns the values used for missing visual fields.
func DefaultVisuals() Visuals {
	return Visuals{
		BreathingIntensity: 0.5,
		BarAlpha:           0.5,
		FontFamily:         "Segoe UI",
		RoughSlide:         1.0,
		BorderRadius:       10.0,
		AnimationEnabled:   true,
	}
}

// DefaultDocument is written when no document exists yet.
func DefaultDocument() *Document {
	return &Document{
		Global: DefaultGlobalConfig(),
		Classes: map[string]*ClassRecord{
			DefaultClassID: {
				Bars:         []float64{10, 20, 15},
				Notices:      []any{map[string]any{"content": "# Welcome", "duration": 10}},
				ActiveSlides: []SlideConfig{NewSlideConfig("chart", 10)},
				State:        DefaultSlideState(),
			},
		},
	}
}

// EmptyDocument is the in-memory fallback when the file cannot be parsed.
func EmptyDocument() *Document {
	return &Document{
		Global:  DefaultGlobalConfig(),
		Classes: make(map[string]*ClassRecord),
	}
}

// Geometry returns the persisted window rectangle.
func (g GlobalConfig) Geometry() Geometry {
	return Geometry{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// Margin returns dock_margin or its default.
func (g GlobalConfig) Margin() int {
	if g.DockMargin == nil {
		return DefaultDockMargin
	}
	return *g.DockMargin
}

// FontSizeOr returns the configured font size, or def when unset.
func (v Visuals) FontSizeOr(def int) int {
	if v.FontSize <= 0 {
		return def
	}
	return v.FontSize
}

// ActiveClassID returns the key of the active profile.
func (d *Document) ActiveClassID() string {
	if d == nil || d.Global.CurrentClassID == "" {
		return DefaultClassID
	}
	return d.Global.CurrentClassID
}

// ActiveClass returns the active profile without modifying the document.
// A missing profile yields an empty record.
func (d *Document) ActiveClass() *ClassRecord {
	if d != nil {
		if cls, ok := d.Classes[d.ActiveClassID()]; ok && cls != nil {
			return cls
		}
	}
	return &ClassRecord{State: DefaultSlideState()}
}

// EnsureActiveClass returns the active profile, creating it if needed.
func (d *Document) EnsureActiveClass() *ClassRecord {
	if d.Classes == nil {
		d.Classes = make(map[string]*ClassRecord)
	}
	id := d.ActiveClassID()
	cls, ok := d.Classes[id]
	if !ok || cls == nil {
		cls = &ClassRecord{State: DefaultSlideState()}
		d.Classes[id] = cls
	}
	return cls
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	data, err := json.Marshal(d)
	if err != nil {
		return EmptyDocument()
	}
	out := &Document{}
	if err := json.Unmarshal(data, out); err != nil {
		return EmptyDocument()
	}
	return out
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	a := alias{Global: DefaultGlobalConfig()}
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	if a.Classes == nil {
		a.Classes = make(map[string]*ClassRecord)
	}
	*d = Document(a)
	d.Extra = extra
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	if d.Classes == nil {
		d.Classes = make(map[string]*ClassRecord)
	}
	return encodeObject(alias(d), d.Extra)
}

func (g *GlobalConfig) UnmarshalJSON(data []byte) error {
	type alias GlobalConfig
	a := alias(DefaultGlobalConfig())
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*g = GlobalConfig(a)
	g.Extra = extra
	return nil
}

func (g GlobalConfig) MarshalJSON() ([]byte, error) {
	type alias GlobalConfig
	return encodeObject(alias(g), g.Extra)
}

func (v *Visuals) UnmarshalJSON(data []byte) error {
	type alias Visuals
	a := alias(DefaultVisuals())
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*v = Visuals(a)
	v.Extra = extra
	return nil
}

func (v Visuals) MarshalJSON() ([]byte, error) {
	type alias Visuals
	return encodeObject(alias(v), v.Extra)
}

func (a *DockAction) UnmarshalJSON(data []byte) error {
	type alias DockAction
	var v alias
	extra, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*a = DockAction(v)
	a.Extra = extra
	return nil
}

func (a DockAction) MarshalJSON() ([]byte, error) {
	type alias DockAction
	return encodeObject(alias(a), a.Extra)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	var v alias
	extra, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*e = Event(v)
	e.Extra = extra
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return encodeObject(alias(e), e.Extra)
}
