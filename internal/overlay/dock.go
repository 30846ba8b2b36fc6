package overlay

import "github.com/slide-scroller/overlay/internal/models"

// DockPosition returns the window origin that places a window of the given
// size in corner pos of screen. Bottom corners are lifted by taskbarOffset.
func DockPosition(pos string, screen Screen, size models.Geometry, margin, taskbarOffset int) (x, y int, ok bool) {
	bottom := screen.Top + screen.Height - size.Height - margin - taskbarOffset

	switch pos {
	case DockTopLeft:
		return screen.Left + margin, screen.Top + margin, true
	case DockTopRight:
		return screen.Right() - size.Width - margin, screen.Top + margin, true
	case DockBottomLeft:
		return screen.Left + margin, bottom, true
	case DockBottomRight:
		return screen.Right() - size.Width - margin, bottom, true
	}
	return size.X, size.Y, false
}
