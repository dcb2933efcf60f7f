package convert

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"iviweb/internal/markup"
	"iviweb/internal/screen"
	"iviweb/internal/system"
)

// Kind is the conversion strategy for a tag.
type Kind uint8

const (
	KindFallback Kind = iota
	KindText
	KindInput
	KindButton
	KindHead
	KindForm
	KindList
	KindHr
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInput:
		return "input"
	case KindButton:
		return "button"
	case KindHead:
		return "head"
	case KindForm:
		return "form"
	case KindList:
		return "list"
	case KindHr:
		return "hr"
	default:
		return "fallback"
	}
}

// KindOf maps a tag name to its conversion strategy.
func KindOf(tag string) Kind {
	switch tag {
	case "p", "span", "label", "h1", "h2", "h3", "h4", "h5", "h6":
		return KindText
	case "input":
		return KindInput
	case "a", "button":
		return KindButton
	case "head":
		return KindHead
	case "form":
		return KindForm
	case "ul", "ol":
		return KindList
	case "hr":
		return KindHr
	default:
		return KindFallback
	}
}

const (
	DefaultInputWidth = 20
	// SubmitButtonWidth is the width of the button synthesized for forms
	// without a submit control.
	SubmitButtonWidth = 25
)

// Options configures a Registry.
type Options struct {
	ScreenWidth  int
	ScreenHeight int
	Palette      *Palette
	// WindowTitleOSC emits the document title as an OSC 2 window title
	// instead of a bold banner line.
	WindowTitleOSC bool
	InputWidth     int
}

// Registry converts source nodes into screen elements. It holds no
// mutable state and may be shared between sessions.
type Registry struct {
	opts Options
}

// NewRegistry returns a registry with defaults filled in.
func NewRegistry(opts Options) *Registry {
	if opts.ScreenWidth <= 0 {
		opts.ScreenWidth = screen.DefaultWidth
	}
	if opts.ScreenHeight <= 0 {
		opts.ScreenHeight = screen.DefaultHeight
	}
	if opts.Palette == nil {
		opts.Palette = DefaultPalette()
	}
	if opts.InputWidth <= 0 {
		opts.InputWidth = DefaultInputWidth
	}
	return &Registry{opts: opts}
}

// Options returns the registry's effective options.
func (r *Registry) Options() Options { return r.opts }

// Convert turns one node into zero or more elements. A single interactive
// result inherits the node's id.
func (r *Registry) Convert(n *markup.Node) []screen.Element {
	return r.convertAs(n, KindOf(n.Tag))
}

func (r *Registry) convertAs(n *markup.Node, kind Kind) []screen.Element {
	var out []screen.Element
	switch kind {
	case KindText, KindFallback:
		out = r.text(n)
	case KindInput:
		out = r.input(n)
	case KindButton:
		out = r.button(n)
	case KindHead:
		out = r.head(n)
	case KindForm:
		out = r.form(n)
	case KindList:
		out = r.list(n)
	case KindHr:
		out = r.hr(n)
	}
	if len(out) == 1 {
		out[0] = withID(out[0], n.ID())
	}
	return out
}

func withID(e screen.Element, id string) screen.Element {
	if id == "" {
		return e
	}
	switch v := e.(type) {
	case screen.TextBox:
		v.ID = id
		return v
	case screen.Button:
		v.ID = id
		return v
	}
	return e
}

func (r *Registry) text(n *markup.Node) []screen.Element {
	return []screen.Element{screen.Text(r.opts.Palette.Resolve(n.Style) + n.Text() + screen.Reset)}
}

func (r *Registry) input(n *markup.Node) []screen.Element {
	typ, _ := n.Attr("type")
	if !strings.EqualFold(strings.TrimSpace(typ), "text") {
		system.Logger.Warn("skipping unsupported input", "type", typ, "id", n.ID())
		return nil
	}
	width := r.opts.InputWidth
	if w, ok := cellWidth(n.Style, r.opts.ScreenWidth, r.opts.ScreenHeight); ok && w > 0 {
		width = w
	}
	initial, _ := n.Attr("value")
	return []screen.Element{screen.NewTextBox(width, initial, r.opts.Palette.Resolve(n.Style))}
}

func (r *Registry) button(n *markup.Node) []screen.Element {
	label := n.Text()
	width := runewidth.StringWidth(label)
	if w, ok := cellWidth(n.Style, r.opts.ScreenWidth, r.opts.ScreenHeight); ok && w > 0 {
		width = w
	}
	var ev *screen.Event
	if link, ok := n.Attr("data-link"); ok {
		e := screen.ChangeSource(link)
		ev = &e
	}
	return []screen.Element{screen.NewButton(width, label, ev, r.opts.Palette.Resolve(n.Style), n.Tag == "a")}
}

func (r *Registry) head(n *markup.Node) []screen.Element {
	title := n.FindTag("title")
	if title == nil {
		system.Logger.Debug("document has no title")
		return nil
	}
	if r.opts.WindowTitleOSC {
		return []screen.Element{screen.Marker(ansi.SetWindowTitle(title.Text()))}
	}
	return []screen.Element{screen.Text(screen.Bold + ">>>" + title.Text() + "<<<" + screen.Reset)}
}

// form renders a terminal-submittable form: its other children, then a
// submit button carrying a SendInputTo event, framed by the form's style.
// Forms without the opt-in attributes render as plain text.
func (r *Registry) form(n *markup.Node) []screen.Element {
	if !n.AttrIs("data-send-from-terminal", "true") {
		system.Logger.Debug("form is not sendable from the terminal; rendering as text")
		return r.text(n)
	}
	action, okAction := n.Attr("action")
	method, okMethod := n.Attr("method")
	if !okAction || !okMethod {
		system.Logger.Debug("form is missing action or method; rendering as text")
		return r.text(n)
	}
	sources := n.FindAll(func(c *markup.Node) bool {
		return c.Tag == "input" && c.ID() != "" && c.AttrIs("data-include-in-payload", "true")
	})
	if len(sources) == 0 {
		system.Logger.Debug("form has no payload inputs")
		return nil
	}
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID()
	}
	ev := screen.SendInputTo(ids, action, method)

	var submit screen.Button
	control := n.Find(func(c *markup.Node) bool { return c.Tag == "button" && c.AttrIs("type", "submit") })
	if control != nil {
		b, ok := firstButton(r.convertAs(control, KindButton))
		if !ok {
			control = nil
		} else {
			submit = b
		}
	}
	if control == nil {
		submit = screen.NewButton(SubmitButtonWidth, "Send", nil, "", false)
	}
	submit.Event = &ev

	var out []screen.Element
	if prefix := r.opts.Palette.Resolve(n.Style); prefix != "" {
		out = append(out, screen.Marker(prefix))
	}
	var exclude []*markup.Node
	if control != nil {
		exclude = append(exclude, control)
	}
	for _, pt := range r.Flatten(n, exclude...) {
		out = append(out, pt.Elements...)
	}
	out = append(out, submit, screen.Marker(screen.Reset))
	return out
}

func firstButton(els []screen.Element) (screen.Button, bool) {
	for _, e := range els {
		if b, ok := e.(screen.Button); ok {
			return b, true
		}
	}
	return screen.Button{}, false
}

func (r *Registry) list(n *markup.Node) []screen.Element {
	items := n.FindAll(markup.IsTag("li"))
	lines := make([]string, len(items))
	for i, li := range items {
		lines[i] = "* " + li.Text()
	}
	return []screen.Element{screen.Text(r.opts.Palette.Resolve(n.Style) + strings.Join(lines, "\n") + screen.Reset)}
}

func (r *Registry) hr(n *markup.Node) []screen.Element {
	scale := 1.0
	if raw, ok := n.Style.Get("width"); ok {
		scale = scaleOrDefault(raw, true, r.opts.ScreenWidth, r.opts.ScreenHeight)
	}
	// one cell stays free for the scrollbar gutter
	count := min(int(math.Round(float64(r.opts.ScreenWidth)*scale)), r.opts.ScreenWidth-1)
	return []screen.Element{screen.Text(r.opts.Palette.Resolve(n.Style) + strings.Repeat("-", max(0, count)) + screen.Reset)}
}
