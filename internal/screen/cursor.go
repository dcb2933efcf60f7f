package screen

import (
	"github.com/charmbracelet/x/ansi"

	"iviweb/internal/system"
)

// Cursor tracks where the terminal cursor is believed to be, inside the
// bounds [0, MaxX] x [0, MaxY].
type Cursor struct {
	X, Y       int
	MaxX, MaxY int
}

// NewCursor returns a cursor at (x, y) clamped to the bounds.
func NewCursor(x, y, maxX, maxY int) *Cursor {
	c := &Cursor{MaxX: maxX, MaxY: maxY}
	c.Park(x, y)
	return c
}

// NavigateTo returns the sequence that moves the cursor from its tracked
// position to (x, y), or "" when it is already there, and records the new
// position.
func (c *Cursor) NavigateTo(x, y int) string {
	x, y = c.clamp(x, y)
	if x == c.X && y == c.Y {
		return ""
	}
	system.Logger.Debug("moving cursor", "from_x", c.X, "from_y", c.Y, "to_x", x, "to_y", y)
	c.X, c.Y = x, y
	return ansi.CursorPosition(x+1, y+1)
}

// Park records a position the cursor reached by other means, such as
// writing a frame, without producing a sequence.
func (c *Cursor) Park(x, y int) {
	c.X, c.Y = c.clamp(x, y)
}

// Move steps the tracked position one cell in the direction of nav.
func (c *Cursor) Move(nav Nav) {
	switch nav {
	case NavLeft:
		if c.X > 0 {
			c.X--
		}
	case NavRight:
		if c.X < c.MaxX {
			c.X++
		}
	case NavUp:
		if c.Y > 0 {
			c.Y--
		}
	case NavDown:
		if c.Y < c.MaxY {
			c.Y++
		}
	}
}

func (c *Cursor) clamp(x, y int) (int, int) {
	x = max(0, min(x, c.MaxX))
	y = max(0, min(y, c.MaxY))
	return x, y
}
