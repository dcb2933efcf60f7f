package convert

import (
	"errors"
	"fmt"

	"iviweb/internal/markup"
	"iviweb/internal/screen"
	"iviweb/internal/system"
)

// ErrStructure reports a document that cannot be laid out at all.
var ErrStructure = errors.New("malformed document")

// BreakDown lays a document out into rows. The head's title, if any, forms
// the first row. Body tags are packed left to right; a row is flushed
// before a tag that starts a new line or would overflow the screen width,
// and after a tag that ends a line.
func (r *Registry) BreakDown(doc *markup.Node) ([]*screen.Row, error) {
	body := doc.FindTag("body")
	if doc.Tag == "body" {
		body = doc
	}
	if body == nil {
		return nil, fmt.Errorf("%w: no body", ErrStructure)
	}

	var rows []*screen.Row
	if head := doc.FindTag("head"); head != nil {
		if els := r.Convert(head); len(els) > 0 {
			rows = append(rows, r.newRow([]*screen.Column{screen.NewColumn(els...)}))
		}
	}

	var (
		pending []*screen.Column
		used    int
	)
	flush := func() {
		if len(pending) > 0 {
			rows = append(rows, r.newRow(pending))
		}
		pending = nil
		used = 0
	}
	tags := r.Flatten(body)
	for _, pt := range tags {
		if len(pt.Elements) == 0 {
			system.Logger.Debug("tag produced no elements", "tag", pt.Node.Tag)
			continue
		}
		if pt.SpaceBefore {
			flush()
		}
		w := pt.Width()
		if used+w > r.opts.ScreenWidth {
			flush()
		}
		used += w
		pending = append(pending, screen.NewColumn(pt.Elements...))
		if pt.SpaceAfter {
			flush()
		}
	}
	flush()
	system.Logger.Debug("document broken down", "tags", len(tags), "rows", len(rows))
	return rows, nil
}

// newRow builds a full-width row followed by one blank line.
func (r *Registry) newRow(cols []*screen.Column) *screen.Row {
	row := screen.NewRow(cols, r.opts.ScreenWidth)
	row.Spacing = 1
	return row
}

// ToScene lays doc out and builds a scene over it. Width and height
// default to the registry's screen size.
func (r *Registry) ToScene(doc *markup.Node, opts screen.Options) (*screen.Scene, error) {
	rows, err := r.BreakDown(doc)
	if err != nil {
		return nil, err
	}
	if opts.Width <= 0 {
		opts.Width = r.opts.ScreenWidth
	}
	if opts.Height <= 0 {
		opts.Height = r.opts.ScreenHeight
	}
	s, err := screen.NewScene(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStructure, err)
	}
	return s, nil
}
