package overlay

import (
	"fmt"
	"math"
	"time"
)

// Dock alignments. DockDefault means the window was never docked or was
// moved away from its corner.
const (
	DockTopLeft     = "tl"
	DockTopRight    = "tr"
	DockBottomLeft  = "bl"
	DockBottomRight = "br"
	DockDefault     = "default"
)

// Badge placements.
const (
	BadgeTop    = "top"
	BadgeBottom = "bottom"
	BadgeLeft   = "left"
	BadgeRight  = "right"
)

// Badge is the status pill drawn over the slides.
type Badge struct {
	Text     string `json:"text" msgpack:"text"`
	Locked   bool   `json:"locked" msgpack:"locked"`
	Vertical string `json:"vertical" msgpack:"vertical"`
	Side     string `json:"side" msgpack:"side"`
}

// NewBadge builds the badge for the rotation state. The pill sits on the
// edge facing away from the docked corner.
func NewBadge(locked bool, remaining time.Duration, dock string) Badge {
	b := Badge{Locked: locked, Vertical: BadgeTop, Side: BadgeRight}
	if locked {
		b.Text = "TRAVADO"
	} else {
		secs := int(math.Ceil(remaining.Seconds()))
		b.Text = fmt.Sprintf("Próximo: %ds", max(secs, 0))
	}

	switch dock {
	case DockTopLeft:
		b.Vertical, b.Side = BadgeBottom, BadgeLeft
	case DockTopRight:
		b.Vertical = BadgeBottom
	case DockBottomLeft:
		b.Side = BadgeLeft
	}
	return b
}
