package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slide-scroller/overlay/internal/models"
)

func TestNewBadge(t *testing.T) {
	tests := []struct {
		name         string
		locked       bool
		remaining    time.Duration
		dock         string
		wantText     string
		wantVertical string
		wantSide     string
	}{
		{"locked", true, 3 * time.Second, DockDefault, "TRAVADO", BadgeTop, BadgeRight},
		{"running", false, 7 * time.Second, DockDefault, "Próximo: 7s", BadgeTop, BadgeRight},
		{"partial second rounds up", false, 2500 * time.Millisecond, DockDefault, "Próximo: 3s", BadgeTop, BadgeRight},
		{"top left dock", false, time.Second, DockTopLeft, "Próximo: 1s", BadgeBottom, BadgeLeft},
		{"top right dock", false, time.Second, DockTopRight, "Próximo: 1s", BadgeBottom, BadgeRight},
		{"bottom left dock", false, time.Second, DockBottomLeft, "Próximo: 1s", BadgeTop, BadgeLeft},
		{"bottom right dock", false, time.Second, DockBottomRight, "Próximo: 1s", BadgeTop, BadgeRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBadge(tt.locked, tt.remaining, tt.dock)
			assert.Equal(t, tt.wantText, b.Text)
			assert.Equal(t, tt.wantVertical, b.Vertical)
			assert.Equal(t, tt.wantSide, b.Side)
		})
	}
}

func TestDockPosition(t *testing.T) {
	screen := Screen{Left: 0, Top: 30, Width: 1000, Height: 800}
	size := models.Geometry{X: 7, Y: 8, Width: 300, Height: 200}

	x, y, ok := DockPosition(DockTopLeft, screen, size, 20, 40)
	assert.True(t, ok)
	assert.Equal(t, [2]int{20, 50}, [2]int{x, y})

	x, y, _ = DockPosition(DockTopRight, screen, size, 20, 40)
	assert.Equal(t, [2]int{680, 50}, [2]int{x, y})

	x, y, _ = DockPosition(DockBottomLeft, screen, size, 20, 40)
	assert.Equal(t, [2]int{20, 570}, [2]int{x, y})

	x, y, _ = DockPosition(DockBottomRight, screen, size, 20, 0)
	assert.Equal(t, [2]int{680, 610}, [2]int{x, y})

	x, y, ok = DockPosition("middle", screen, size, 20, 0)
	assert.False(t, ok)
	assert.Equal(t, [2]int{7, 8}, [2]int{x, y})
}
