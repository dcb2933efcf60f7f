package screen

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Justify positions a row's columns inside the row.
type Justify uint8

const (
	JustifyNone Justify = iota
	JustifyStart
	JustifyCenter
	JustifyEnd
)

// Point is a cell position, zero-based.
type Point struct{ X, Y int }

// Slot addresses one element in a scene's grid.
type Slot struct{ Row, Column, Index int }

// Column is an ordered group of elements drawn in the same horizontal band
// of a Row, one below the other.
type Column struct {
	elements []Element
	ids      map[string]int
}

// NewColumn builds a column and indexes the ids of its elements.
func NewColumn(elements ...Element) *Column {
	c := &Column{elements: append([]Element(nil), elements...)}
	c.reindex()
	return c
}

func (c *Column) reindex() {
	c.ids = nil
	for i, e := range c.elements {
		if id := elementID(e); id != "" {
			if c.ids == nil {
				c.ids = map[string]int{}
			}
			if _, dup := c.ids[id]; !dup {
				c.ids[id] = i
			}
		}
	}
}

// Elements returns a copy of the column's elements.
func (c *Column) Elements() []Element { return append([]Element(nil), c.elements...) }

// Lookup returns the element carrying id.
func (c *Column) Lookup(id string) (Element, bool) {
	i, ok := c.ids[id]
	if !ok {
		return nil, false
	}
	return c.elements[i], true
}

// IDs returns the ids indexed in this column in element order.
func (c *Column) IDs() []string {
	var out []string
	for i, e := range c.elements {
		if id := elementID(e); id != "" && c.ids[id] == i {
			out = append(out, id)
		}
	}
	return out
}

// set replaces the element at i and refreshes the id index.
func (c *Column) set(i int, e Element) {
	c.elements[i] = e
	c.reindex()
}

// Row is a horizontal band of columns sharing a fixed width. Gutter cells
// at the right edge are reserved for the scene's scrollbar; Spacing blank
// lines follow the row when a scene draws it.
type Row struct {
	Columns  []*Column
	Width    int
	JustifyX Justify
	JustifyY Justify
	Gutter   int
	Spacing  int
}

// NewRow returns a row with a one-cell scrollbar gutter.
func NewRow(columns []*Column, width int) *Row {
	return &Row{Columns: columns, Width: width, Gutter: 1}
}

// rowLayout is the serialized form of a row plus the origin of the first
// line of every element, keyed by [column, index] of the row's own columns.
type rowLayout struct {
	lines   []string
	origins map[[2]int]Point
}

// Text serializes the row: one line per output line, each ending in "\n".
func (r *Row) Text() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Lines returns the row's lines, each exactly Width cells wide with the
// gutter filled by spaces.
func (r *Row) Lines() []string {
	l := r.layout()
	if r.Gutter <= 0 {
		return l.lines
	}
	gutter := strings.Repeat(" ", r.Gutter)
	out := make([]string, len(l.lines))
	for i, ln := range l.lines {
		out[i] = ln + gutter
	}
	return out
}

func (r *Row) contentWidth() int {
	w := r.Width - r.Gutter
	if w < 0 {
		return 0
	}
	return w
}

// columnWidths splits width across n columns. Each column gets the rounded
// share; the last one absorbs the rounding difference so the total is exact.
func columnWidths(width, n int) []int {
	if n == 0 {
		return nil
	}
	per := int(math.Round(float64(width) / float64(n)))
	ws := make([]int, n)
	used := 0
	for i := 0; i < n-1; i++ {
		w := per
		if used+w > width {
			w = width - used
		}
		ws[i] = w
		used += w
	}
	ws[n-1] = width - used
	return ws
}

// justified returns the columns to draw, with blank padding columns
// inserted, and the offset of the row's first own column.
func (r *Row) justified() ([]*Column, int) {
	switch r.JustifyX {
	case JustifyCenter:
		cols := make([]*Column, 0, len(r.Columns)+2)
		cols = append(cols, NewColumn(Text("")))
		cols = append(cols, r.Columns...)
		return append(cols, NewColumn(Text(""))), 1
	case JustifyEnd:
		cols := make([]*Column, 0, len(r.Columns)+1)
		cols = append(cols, NewColumn(Text("")))
		return append(cols, r.Columns...), 1
	default:
		return r.Columns, 0
	}
}

func (r *Row) layout() rowLayout {
	cols, shift := r.justified()
	widths := columnWidths(r.contentWidth(), len(cols))
	cells := make([][]string, len(cols))
	firstLine := make([]map[int]int, len(cols))
	height := 0
	for ci, col := range cols {
		w := widths[ci]
		var lines []string
		pending := ""
		firstLine[ci] = map[int]int{}
		for ei, el := range col.elements {
			if m, ok := el.(Marker); ok {
				pending += string(m)
				continue
			}
			firstLine[ci][ei] = len(lines)
			for _, raw := range strings.Split(el.Render(), "\n") {
				for _, ln := range fit(raw, w, splittable(el)) {
					lines = append(lines, pending+ln)
					pending = ""
				}
			}
		}
		if pending != "" && len(lines) > 0 {
			lines[len(lines)-1] += pending
		}
		cells[ci] = lines
		if len(lines) > height {
			height = len(lines)
		}
	}

	origins := map[[2]int]Point{}
	tops := make([]int, len(cols))
	x := 0
	for ci := range cols {
		switch r.JustifyY {
		case JustifyCenter:
			tops[ci] = (height - len(cells[ci])) / 2
		case JustifyEnd:
			tops[ci] = height - len(cells[ci])
		}
		if own := ci - shift; own >= 0 && own < len(r.Columns) {
			for ei, y := range firstLine[ci] {
				origins[[2]int{own, ei}] = Point{X: x, Y: y + tops[ci]}
			}
		}
		x += widths[ci]
	}

	out := make([]string, height)
	var sb strings.Builder
	for li := 0; li < height; li++ {
		sb.Reset()
		for ci := range cols {
			cell := ""
			if idx := li - tops[ci]; idx >= 0 && idx < len(cells[ci]) {
				cell = cells[ci][idx]
			}
			sb.WriteString(pad(cell, widths[ci]))
		}
		out[li] = sb.String()
	}
	return rowLayout{lines: out, origins: origins}
}

// fit breaks one rendered line to width: character-wrapped when the element
// is splittable, clipped otherwise.
func fit(line string, width int, split bool) []string {
	if width <= 0 {
		return []string{""}
	}
	if ansi.StringWidth(line) <= width {
		return []string{line}
	}
	if !split {
		return []string{ansi.Truncate(line, width, "")}
	}
	lines := strings.Split(ansi.Hardwrap(line, width, true), "\n")
	for i, ln := range lines {
		// a wide rune can still overflow a column narrower than itself
		if ansi.StringWidth(ln) > width {
			lines[i] = ansi.Truncate(ln, width, "")
		}
	}
	return lines
}

// pad right-fills s with spaces to width printable cells.
func pad(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
