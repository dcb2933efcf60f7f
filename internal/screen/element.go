package screen

// Element is anything that can be placed in a Column. Render may return
// several lines separated by "\n".
type Element interface {
	Render() string
}

// Identifiable elements carry a stable id copied from their source node.
type Identifiable interface {
	Element
	ElementID() string
}

// Splitter lets an element opt out of character wrapping. Elements that
// do not implement it are splittable.
type Splitter interface {
	Splittable() bool
}

// Interactive elements take keyboard focus and react to keys. OnKeypress
// returns the updated element and any events it raised, in order.
type Interactive interface {
	Element
	IsActive() bool
	WithActive(active bool) Interactive
	OnKeypress(k Key) (Interactive, []Event)
	// CursorOffset is added to the element's first-cell position to place
	// the terminal cursor while the element is active.
	CursorOffset() (dx, dy int)
}

// Updater elements refresh on every cycle that does not deliver them a key.
type Updater interface {
	Element
	OnUpdate() Element
}

// ContentHolder exposes user-entered content for form submission.
type ContentHolder interface {
	Value() string
}

// Key is one input chunk as delivered to an element.
type Key struct {
	Raw  []byte
	Text string
	// Confirm is set when the chunk matches the configured confirm code.
	Confirm bool
}

// Text is styled text: any color prefix and reset codes are part of the
// string itself.
type Text string

func (t Text) Render() string { return string(t) }

// Marker is a zero-width structural element such as a style prefix or
// reset code framing a group of elements.
type Marker string

func (m Marker) Render() string { return string(m) }

func splittable(e Element) bool {
	if s, ok := e.(Splitter); ok {
		return s.Splittable()
	}
	return true
}

func elementID(e Element) string {
	if id, ok := e.(Identifiable); ok {
		return id.ElementID()
	}
	return ""
}
