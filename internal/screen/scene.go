package screen

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"iviweb/internal/system"
)

// Submitter sends form fields to an endpoint and returns the final URL
// after redirects.
type Submitter interface {
	Submit(ctx context.Context, endpoint, method string, fields url.Values) (string, error)
}

// Options configures a Scene. Zero values take the defaults below.
type Options struct {
	Width       int
	Height      int
	Scroll      int
	ScrollSpeed float64
	Source      string
	Keys        Keymap
	Submitter   Submitter
}

const (
	DefaultWidth       = 80
	DefaultHeight      = 24
	DefaultScrollSpeed = 0.25
)

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.ScrollSpeed <= 0 {
		o.ScrollSpeed = DefaultScrollSpeed
	}
	if o.Keys == (Keymap{}) {
		o.Keys = DefaultKeymap()
	}
	return o
}

// Scene is the live rendering of one document: a grid of rows plus
// scroll, focus and cursor state. A Scene is not safe for concurrent use;
// each session owns its own.
type Scene struct {
	rows        []*Row
	width       int
	height      int
	scroll      int
	total       int
	scrollSpeed float64
	keys        Keymap
	submitter   Submitter

	interactive []Slot
	active      int

	cursor *Cursor
	// target is the active element's cursor cell in the current viewport,
	// nil when it is scrolled out of view.
	target *Point
	// origins holds the absolute content position of every element's first
	// line as of the last frame.
	origins map[Slot]Point

	source      string
	forceReload bool
}

// NewScene builds a scene over rows, activates the first interactive
// element and lays out the first frame. Two elements sharing an id fail
// with ErrDuplicateID.
func NewScene(rows []*Row, opts Options) (*Scene, error) {
	opts = opts.withDefaults()
	s := &Scene{
		rows:        rows,
		width:       opts.Width,
		height:      opts.Height,
		scroll:      max(0, opts.Scroll),
		scrollSpeed: opts.ScrollSpeed,
		keys:        opts.Keys,
		submitter:   opts.Submitter,
		source:      opts.Source,
		cursor:      NewCursor(0, opts.Height, opts.Width, opts.Height),
	}
	seen := map[string]Slot{}
	for ri, row := range rows {
		for ci, col := range row.Columns {
			for ei, el := range col.elements {
				slot := Slot{Row: ri, Column: ci, Index: ei}
				if id := elementID(el); id != "" {
					if prev, dup := seen[id]; dup {
						return nil, fmt.Errorf("%w: %q at %v and %v", ErrDuplicateID, id, prev, slot)
					}
					seen[id] = slot
				}
				if _, ok := el.(Interactive); ok {
					s.interactive = append(s.interactive, slot)
				}
			}
		}
	}
	if len(s.interactive) > 0 {
		s.setActive(0, true)
	}
	s.frame()
	if len(s.interactive) > 0 {
		slot := s.interactive[s.active]
		s.placeCursor(slot, s.elementAt(slot).(Interactive))
	}
	system.Logger.Debug("scene built", "source", s.source, "rows", len(rows), "interactive", len(s.interactive), "height", s.total)
	return s, nil
}

// Source is the file path or URL the scene was loaded from, or the one it
// asked to navigate to.
func (s *Scene) Source() string { return s.source }

// SetSource replaces the source; the caller reloads on its next cycle.
func (s *Scene) SetSource(src string) { s.source = src }

// ForceReload reports whether the last update asked for the source to be
// loaded again even if it did not change.
func (s *Scene) ForceReload() bool { return s.forceReload }

func (s *Scene) Width() int        { return s.width }
func (s *Scene) Height() int       { return s.height }
func (s *Scene) ScrollOffset() int { return s.scroll }

// TotalHeight is the number of content lines as of the last frame.
func (s *Scene) TotalHeight() int { return s.total }

// Rows returns the scene's rows.
func (s *Scene) Rows() []*Row { return s.rows }

// ActiveIndex returns the index of the active element among Interactive().
func (s *Scene) ActiveIndex() int { return s.active }

// Interactive returns the interactive elements in document order.
func (s *Scene) Interactive() []Interactive {
	out := make([]Interactive, 0, len(s.interactive))
	for _, slot := range s.interactive {
		out = append(out, s.elementAt(slot).(Interactive))
	}
	return out
}

func (s *Scene) elementAt(slot Slot) Element {
	return s.rows[slot.Row].Columns[slot.Column].elements[slot.Index]
}

func (s *Scene) setElementAt(slot Slot, e Element) {
	s.rows[slot.Row].Columns[slot.Column].set(slot.Index, e)
}

func (s *Scene) setActive(i int, active bool) {
	slot := s.interactive[i]
	if it, ok := s.elementAt(slot).(Interactive); ok {
		s.setElementAt(slot, it.WithActive(active))
	}
}

// frame lays out every row, records element origins and returns the
// visible lines, scrollbar included.
func (s *Scene) frame() []string {
	var (
		all     []string
		gutters []int
	)
	s.origins = map[Slot]Point{}
	for ri, row := range s.rows {
		l := row.layout()
		base := len(all)
		for k, p := range l.origins {
			s.origins[Slot{Row: ri, Column: k[0], Index: k[1]}] = Point{X: p.X, Y: base + p.Y}
		}
		for _, ln := range l.lines {
			all = append(all, ln)
			gutters = append(gutters, row.Gutter)
		}
		blank := strings.Repeat(" ", row.contentWidth())
		for i := 0; i < row.Spacing; i++ {
			all = append(all, blank)
			gutters = append(gutters, row.Gutter)
		}
	}
	s.total = len(all)
	s.scroll = max(0, min(s.scroll, s.total))

	start := s.scroll
	end := min(start+s.height, s.total)
	bar := s.scrollbar()
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ln := all[i]
		g := gutters[i]
		if g <= 0 {
			out = append(out, ln)
			continue
		}
		glyph := ""
		if bar != nil {
			glyph = bar[i-start]
			if strings.Contains(ln, "\x1b") {
				glyph = Reset + glyph
			}
		}
		out = append(out, ln+pad(glyph, g))
	}
	return out
}

// scrollbar returns one glyph per viewport line, or nil when the content
// fits. The thumb position is proportional to scroll/total.
func (s *Scene) scrollbar() []string {
	if s.total <= s.height || s.height < 2 {
		return nil
	}
	bar := make([]string, s.height)
	bar[0] = "^"
	bar[s.height-1] = "V"
	track := s.height - 2
	thumb := int(math.Floor(float64(track) * float64(s.scroll) / float64(s.total)))
	for i := 0; i < track; i++ {
		if i == thumb {
			bar[i+1] = "O"
		} else {
			bar[i+1] = "."
		}
	}
	return bar
}

// Frame returns the visible lines without any cursor sequence.
func (s *Scene) Frame() []string { return s.frame() }

// Render returns the full visible frame joined by "\n", followed by the
// sequence placing the cursor on the active element when it is in view.
func (s *Scene) Render() string {
	lines := s.frame()
	out := strings.Join(lines, "\n")
	if seq := s.cursorSequence(); seq != "" {
		return out + seq
	}
	if n := len(lines); n > 0 {
		s.cursor.Park(ansi.StringWidth(lines[n-1]), n-1)
	}
	return out
}

// cursorSequence returns the absolute move to the active element's cell,
// or "" when it is out of view. It is emitted with every frame.
func (s *Scene) cursorSequence() string {
	if s.target == nil {
		return ""
	}
	s.cursor.Park(s.target.X, s.target.Y)
	return ansi.CursorPosition(s.target.X+1, s.target.Y+1)
}

// TerminalLines renders the frame as CRLF-terminated lines for a raw
// terminal connection. The cursor sequence comes last so the line endings
// do not move the cursor off its target.
func (s *Scene) TerminalLines() [][]byte {
	lines := s.frame()
	out := make([][]byte, 0, len(lines)+1)
	for _, ln := range lines {
		out = append(out, []byte(ln+"\r\n"))
	}
	if seq := s.cursorSequence(); seq != "" {
		out = append(out, []byte(seq))
	} else {
		s.cursor.Park(0, len(lines))
	}
	return out
}

// DialInString returns a block the user can resize their terminal to.
func (s *Scene) DialInString() string {
	block := strings.Repeat(strings.Repeat("A", s.width)+"\n", max(0, s.height-1))
	return "Resize your terminal window to just contain the content below for optimal performance: \n" + block
}

// Update processes one input chunk; key "" is a periodic update with no
// key. Navigation keys move focus or scroll; every other key is delivered
// to each interactive element, and events they raise are handled before
// the walk continues.
func (s *Scene) Update(ctx context.Context, key string) {
	s.forceReload = false
	s.target = nil
	nav := s.keys.Nav(key)
	switch nav {
	case NavLeft, NavRight:
		s.cycle(nav)
	case NavUp, NavDown:
		s.scrollBy(nav)
	}
	if nav != NavNone {
		s.cursor.Move(nav)
	}

	k := Key{Raw: []byte(key), Text: key, Confirm: key != "" && key == s.keys.Confirm}
	for ri, row := range s.rows {
		for ci, col := range row.Columns {
			for ei := range col.elements {
				slot := Slot{Row: ri, Column: ci, Index: ei}
				el := col.elements[ei]
				if it, ok := el.(Interactive); ok && key != "" && nav == NavNone {
					updated, events := it.OnKeypress(k)
					el = updated
					col.set(ei, el)
					for _, ev := range events {
						s.HandleEvent(ctx, ev)
					}
				} else if u, ok := el.(Updater); ok {
					el = u.OnUpdate()
				}
				if it, ok := el.(Interactive); ok && it.IsActive() {
					s.placeCursor(slot, it)
				}
				col.set(ei, el)
			}
		}
	}
}

func (s *Scene) cycle(nav Nav) {
	n := len(s.interactive)
	if n == 0 {
		return
	}
	s.setActive(s.active, false)
	if nav == NavRight {
		s.active = (s.active + 1) % n
	} else {
		s.active = (s.active - 1 + n) % n
	}
	s.setActive(s.active, true)
	system.Logger.Debug("active element changed", "index", s.active)
}

func (s *Scene) scrollBy(nav Nav) {
	step := max(1, int(math.Round(float64(s.height)*s.scrollSpeed)))
	if nav == NavUp {
		s.scroll = max(0, s.scroll-step)
	} else {
		s.scroll = min(s.total, s.scroll+step)
	}
	system.Logger.Debug("scrolled", "offset", s.scroll, "total", s.total)
}

// placeCursor stages a cursor move to the active element. Elements outside
// the viewport are skipped.
func (s *Scene) placeCursor(slot Slot, it Interactive) {
	p, ok := s.origins[slot]
	if !ok {
		system.Logger.Debug("active element has no position yet", "slot", slot)
		return
	}
	y := p.Y - s.scroll
	if y < 0 || y >= s.height {
		system.Logger.Debug("active element is scrolled out of view", "slot", slot, "line", p.Y, "offset", s.scroll)
		return
	}
	dx, dy := it.CursorOffset()
	s.cursor.NavigateTo(p.X+dx, y+dy)
	s.target = &Point{X: s.cursor.X, Y: s.cursor.Y}
}

// HandleEvent applies an event raised by an element. Submission failures
// are logged and leave the scene unchanged.
func (s *Scene) HandleEvent(ctx context.Context, ev Event) {
	system.Logger.Debug("handling event", "event", ev.String())
	switch ev.Kind {
	case EventChangeSource:
		s.source = ev.Source
	case EventSendInputTo:
		fields := url.Values{}
		for _, id := range ev.SourceIDs {
			el, err := s.Element(id)
			if err != nil {
				system.Logger.Warn("form input not found", "err", err, "available", s.ElementIDs())
				continue
			}
			holder, ok := el.(ContentHolder)
			if !ok {
				system.Logger.Warn("form input has no content", "id", id)
				continue
			}
			fields.Set(id, holder.Value())
		}
		if s.submitter == nil {
			system.Logger.Warn("no submitter configured; dropping form", "endpoint", ev.Endpoint)
			return
		}
		final, err := s.submitter.Submit(ctx, ev.Endpoint, ev.Method, fields)
		if err != nil {
			system.Logger.Warn("form submission failed", "endpoint", ev.Endpoint, "err", err)
			return
		}
		if final != "" && final != s.source {
			system.Logger.Debug("source changed by submission", "source", final)
			s.source = final
		}
		s.forceReload = true
	default:
		system.Logger.Warn("scene ignored unknown event", "event", ev.String())
	}
}

// Element returns the element carrying id, or a *LookupError.
func (s *Scene) Element(id string) (Element, error) {
	for _, row := range s.rows {
		for _, col := range row.Columns {
			if e, ok := col.Lookup(id); ok {
				return e, nil
			}
		}
	}
	return nil, newLookupError(id, s.ElementIDs())
}

// ElementIDs lists every indexed id in document order.
func (s *Scene) ElementIDs() []string {
	var ids []string
	for _, row := range s.rows {
		for _, col := range row.Columns {
			ids = append(ids, col.IDs()...)
		}
	}
	return ids
}
