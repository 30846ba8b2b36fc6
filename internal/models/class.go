package models

import "encoding/json"

// Unlocked is the sentinel stored in locked_slide and locked_notice.
const Unlocked = -1

// ClassRecord is one profile: chart data, deadlines and the slides to rotate.
type ClassRecord struct {
	Bars         []float64     `json:"bars"`
	Deadlines    []Deadline    `json:"deadlines,omitempty"`
	Notices      []any         `json:"notices,omitempty"`
	Web          *WebDefaults  `json:"web,omitempty"`
	ActiveSlides []SlideConfig `json:"active_slides"`
	State        SlideState    `json:"state"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Deadline is a task due on a DD/MM/YYYY date.
type Deadline struct {
	Task string `json:"task"`
	Date string `json:"date"`

	Extra map[string]json.RawMessage `json:"-"`
}

// WebDefaults is the class-level fallback for web slides without a url.
type WebDefaults struct {
	URL  string  `json:"url"`
	Zoom float64 `json:"zoom"`
}

// SlideState is the persisted rotation state of a profile.
type SlideState struct {
	LockedSlide    int `json:"locked_slide"`
	LastSlideIndex int `json:"last_slide_index"`
	LockedNotice   int `json:"locked_notice"`

	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultSlideState is unlocked at slide 0.
func DefaultSlideState() SlideState {
	return SlideState{LockedSlide: Unlocked, LockedNotice: Unlocked}
}

func (c *ClassRecord) UnmarshalJSON(data []byte) error {
	type alias ClassRecord
	a := alias{State: DefaultSlideState()}
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*c = ClassRecord(a)
	c.Extra = extra
	return nil
}

func (c ClassRecord) MarshalJSON() ([]byte, error) {
	type alias ClassRecord
	if c.Bars == nil {
		c.Bars = []float64{}
	}
	if c.ActiveSlides == nil {
		c.ActiveSlides = []SlideConfig{}
	}
	return encodeObject(alias(c), c.Extra)
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	type alias Deadline
	var a alias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*d = Deadline(a)
	d.Extra = extra
	return nil
}

func (d Deadline) MarshalJSON() ([]byte, error) {
	type alias Deadline
	return encodeObject(alias(d), d.Extra)
}

func (s *SlideState) UnmarshalJSON(data []byte) error {
	type alias SlideState
	a := alias(DefaultSlideState())
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*s = SlideState(a)
	s.Extra = extra
	return nil
}

func (s SlideState) MarshalJSON() ([]byte, error) {
	type alias SlideState
	return encodeObject(alias(s), s.Extra)
}
