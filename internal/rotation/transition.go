package rotation

import (
	"math"
	"time"
)

// DefaultTransitionDuration is the length of a slide change animation.
const DefaultTransitionDuration = 500 * time.Millisecond

// Direction of a slide change: the incoming slide enters from the right
// when moving forward and from the left when moving back.
const (
	Forward  = 1
	Backward = -1
)

// Frame is the animation state at one instant.
type Frame struct {
	From      int     `json:"from" msgpack:"from"`
	To        int     `json:"to" msgpack:"to"`
	Direction int     `json:"direction" msgpack:"direction"`
	Progress  float64 `json:"progress" msgpack:"progress"`
	Active    bool    `json:"active" msgpack:"active"`
}

// Transition animates between pool positions. At most one animation is in
// flight; starting another first snaps the running one to its end state.
type Transition struct {
	duration time.Duration
	shown    int
	from     int
	dir      int
	started  time.Time
	active   bool
}

// NewTransition creates an idle animator showing position 0. A non-positive
// duration disables animation.
func NewTransition(d time.Duration) *Transition {
	return &Transition{duration: d, dir: Forward}
}

// Shown returns the position displayed once any animation completes.
func (t *Transition) Shown() int { return t.shown }

// Active reports whether an animation is in flight.
func (t *Transition) Active() bool { return t.active }

// SetCurrent shows i immediately, cancelling any animation.
func (t *Transition) SetCurrent(i int) {
	t.active = false
	t.shown = i
}

// Finish snaps an in-flight animation to its end state.
func (t *Transition) Finish() {
	t.active = false
}

// SlideTo starts animating to target in a pool of count slides. It returns
// false when target is already shown or animation is disabled.
func (t *Transition) SlideTo(target, count int, now time.Time) bool {
	t.Finish()
	if target == t.shown {
		return false
	}

	dir := Forward
	if target < t.shown {
		dir = Backward
	}
	// Wrapping around reads as continuing in the same direction. With two
	// slides this reverses both moves.
	switch {
	case t.shown == count-1 && target == 0:
		dir = Forward
	case t.shown == 0 && target == count-1:
		dir = Backward
	}

	from := t.shown
	t.shown = target
	t.dir = dir
	if t.duration <= 0 {
		return false
	}
	t.from = from
	t.started = now
	t.active = true
	return true
}

// Advance ends the animation once its duration has elapsed. It returns true
// on the call that completes it.
func (t *Transition) Advance(now time.Time) bool {
	if !t.active || now.Sub(t.started) < t.duration {
		return false
	}
	t.active = false
	return true
}

// Frame returns the eased animation state at now.
func (t *Transition) Frame(now time.Time) Frame {
	if !t.active {
		return Frame{From: t.shown, To: t.shown, Direction: t.dir, Progress: 1}
	}
	p := float64(now.Sub(t.started)) / float64(t.duration)
	return Frame{
		From:      t.from,
		To:        t.shown,
		Direction: t.dir,
		Progress:  outCubic(math.Min(math.Max(p, 0), 1)),
		Active:    true,
	}
}

// Offsets returns the horizontal positions of the outgoing and incoming
// slides for a surface of the given width.
func (f Frame) Offsets(width float64) (out, in float64) {
	span := width * float64(f.Direction)
	return -span * f.Progress, span * (1 - f.Progress)
}

func outCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
