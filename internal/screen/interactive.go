package screen

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"iviweb/internal/system"
)

// TextBox is a single-line text entry framed by a box Width cells wide.
type TextBox struct {
	ID      string
	Width   int
	Content string
	Color   string
	Active  bool
}

// NewTextBox returns a text box; widths below 3 are raised to 3 so the
// frame always has room for one character.
func NewTextBox(width int, initial, color string) TextBox {
	if width < 3 {
		width = 3
	}
	return TextBox{Width: width, Content: initial, Color: color}
}

func (t TextBox) ElementID() string { return t.ID }
func (t TextBox) Value() string     { return t.Content }
func (t TextBox) IsActive() bool    { return t.Active }
func (t TextBox) Splittable() bool  { return false }

func (t TextBox) WithActive(active bool) Interactive {
	t.Active = active
	return t
}

// visible returns the displayed part of Content: the trailing inner cells
// when it overflows. Content itself is never truncated.
func (t TextBox) visible() string {
	inner := t.Width - 2
	if runewidth.StringWidth(t.Content) <= inner {
		return t.Content
	}
	return keepTail(t.Content, inner)
}

// CursorOffset places the cursor after the last visible character.
func (t TextBox) CursorOffset() (int, int) {
	return 1 + runewidth.StringWidth(t.visible()), 1
}

func (t TextBox) Render() string {
	inner := t.Width - 2
	caret := "|"
	if t.Active {
		caret = ">"
	}
	edge := strings.Repeat("-", t.Width)
	var sb strings.Builder
	sb.WriteString(t.Color)
	sb.WriteString(edge)
	sb.WriteByte('\n')
	sb.WriteString(caret)
	sb.WriteString(runewidth.FillRight(t.visible(), inner))
	sb.WriteString("|\n")
	sb.WriteString(edge)
	sb.WriteString(Reset)
	return sb.String()
}

// OnKeypress appends letters to Content while the box is active.
func (t TextBox) OnKeypress(k Key) (Interactive, []Event) {
	if !t.Active {
		return t, nil
	}
	if k.Text == "" || strings.IndexFunc(k.Text, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		system.Logger.Debug("textbox ignored key", "id", t.ID, "key", k.Text)
		return t, nil
	}
	t.Content += k.Text
	return t, nil
}

// Button is a labelled control that raises its attached event when the
// confirm key is pressed while it is active. Link-like buttons render on a
// single line without a border.
type Button struct {
	ID       string
	Width    int
	Label    string
	Event    *Event
	Color    string
	LinkLike bool
	Active   bool
}

// NewButton returns a button; a non-positive width falls back to the
// label's width.
func NewButton(width int, label string, ev *Event, color string, linkLike bool) Button {
	if width <= 0 {
		width = runewidth.StringWidth(label)
	}
	if width < 1 {
		width = 1
	}
	return Button{Width: width, Label: label, Event: ev, Color: color, LinkLike: linkLike}
}

func (b Button) ElementID() string { return b.ID }
func (b Button) IsActive() bool    { return b.Active }

// Splittable keeps boxed buttons intact; wrapping would tear the border.
func (b Button) Splittable() bool { return b.LinkLike }

func (b Button) WithActive(active bool) Interactive {
	b.Active = active
	return b
}

func (b Button) CursorOffset() (int, int) {
	if b.LinkLike {
		return 0, 0
	}
	return 0, 1
}

func (b Button) OnUpdate() Element { return b }

// OnKeypress raises the attached event on confirm.
func (b Button) OnKeypress(k Key) (Interactive, []Event) {
	if !b.Active || !k.Confirm {
		return b, nil
	}
	if b.Event == nil {
		system.Logger.Debug("button confirmed without event", "id", b.ID)
		return b, nil
	}
	system.Logger.Debug("button dispatching event", "id", b.ID, "event", b.Event.String())
	return b, []Event{*b.Event}
}

func (b Button) Render() string {
	label := b.Label
	if runewidth.StringWidth(label) > b.Width {
		label = keepTail(label, b.Width)
	}
	caret := "|"
	if b.Active {
		caret = ">"
	}
	line := caret + runewidth.FillRight(label, b.Width) + "|"
	if b.LinkLike {
		return b.Color + line + Reset
	}
	ch := "="
	if b.Active {
		ch = "."
	}
	border := strings.Repeat(ch, b.Width+2)
	return b.Color + border + "\n" + line + "\n" + border + Reset
}

// keepTail returns the trailing part of s that fits in width cells.
func keepTail(s string, width int) string {
	if width <= 0 {
		return ""
	}
	rs := []rune(s)
	w := 0
	i := len(rs)
	for i > 0 {
		rw := runewidth.RuneWidth(rs[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return string(rs[i:])
}
