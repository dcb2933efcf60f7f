package convert

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"iviweb/internal/markup"
	"iviweb/internal/screen"
	"iviweb/internal/system"
)

// ParsedTag is one node's conversion result plus its line-break hints.
type ParsedTag struct {
	Node        *markup.Node
	Elements    []screen.Element
	SpaceBefore bool
	SpaceAfter  bool
}

// Width is the widest rendered line across the tag's elements.
func (p ParsedTag) Width() int {
	w := 0
	for _, e := range p.Elements {
		for _, ln := range strings.Split(e.Render(), "\n") {
			w = max(w, ansi.StringWidth(ln))
		}
	}
	return w
}

// breakBefore and breakAfter list the tags that start and end a row.
var (
	breakBefore = map[string]bool{"hr": true, "form": true, "input": true}
	breakAfter  = map[string]bool{
		"p": true, "br": true, "hr": true, "form": true, "input": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}
)

// ownsSubtree reports tags whose converter walks its own children.
func ownsSubtree(tag string) bool {
	switch tag {
	case "form", "ul", "ol", "li":
		return true
	}
	return false
}

func (r *Registry) parse(n *markup.Node) ParsedTag {
	return ParsedTag{
		Node:        n,
		Elements:    r.Convert(n),
		SpaceBefore: breakBefore[n.Tag],
		SpaceAfter:  breakAfter[n.Tag],
	}
}

// Flatten walks the element children of parent in document order.
// Leaves and self-walking containers are converted directly; other
// containers are descended into, with their own direct text converted
// ahead of their children. Excluded nodes are skipped at any depth. The
// input tree is never modified.
func (r *Registry) Flatten(parent *markup.Node, exclude ...*markup.Node) []ParsedTag {
	var out []ParsedTag
	for _, child := range parent.Elements() {
		if excluded(child, exclude) {
			system.Logger.Debug("skipping excluded node", "tag", child.Tag)
			continue
		}
		if !child.HasElements() || ownsSubtree(child.Tag) {
			out = append(out, r.parse(child))
			continue
		}
		nested := r.Flatten(child, exclude...)
		if rest := child.WithoutElements(); rest.Text() != "" {
			out = append(out, r.parse(rest))
		}
		out = append(out, nested...)
	}
	return out
}

func excluded(n *markup.Node, exclude []*markup.Node) bool {
	for _, x := range exclude {
		if n == x {
			return true
		}
	}
	return false
}
