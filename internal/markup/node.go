package markup

import "strings"

// NodeType distinguishes element nodes from text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is one node of a parsed document. Element nodes carry a tag name,
// attributes and an optional parsed inline style; text nodes carry Data.
// Nodes are read-only once built: every helper below returns new values and
// leaves the receiver untouched, so one tree can back many scenes.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    map[string]string
	Style    Style
	Data     string
	Children []*Node
}

// Element builds an element node. Style is parsed from the "style"
// attribute when present; a malformed style leaves Style nil.
func Element(tag string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs, Children: children}
	if raw, ok := attrs["style"]; ok {
		if st, err := ParseStyle(raw); err == nil {
			n.Style = st
		}
	}
	return n
}

// Text builds a text node.
func Text(data string) *Node { return &Node{Type: TextNode, Data: data} }

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute is set.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// AttrIs reports whether the attribute equals want, ignoring case.
func (n *Node) AttrIs(name, want string) bool {
	v, ok := n.Attr(name)
	return ok && strings.EqualFold(strings.TrimSpace(v), want)
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

// Elements returns the direct element children.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// HasElements reports whether the node has at least one element child.
func (n *Node) HasElements() bool {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return true
		}
	}
	return false
}

// Text returns all descendant text in document order, trimmed.
func (n *Node) Text() string {
	var sb strings.Builder
	n.collectText(&sb)
	return strings.TrimSpace(sb.String())
}

func (n *Node) collectText(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(n.Data)
		return
	}
	for _, c := range n.Children {
		c.collectText(sb)
	}
}

// OwnText returns only the text of direct text children, trimmed.
func (n *Node) OwnText() string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// WithoutElements returns a shallow copy of n that keeps only its direct
// text children.
func (n *Node) WithoutElements() *Node {
	cp := *n
	cp.Children = nil
	for _, c := range n.Children {
		if c.Type == TextNode {
			cp.Children = append(cp.Children, c)
		}
	}
	return &cp
}

// Find returns the first descendant element (depth-first, document order)
// matching pred, or nil.
func (n *Node) Find(pred func(*Node) bool) *Node {
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if pred(c) {
			return c
		}
		if m := c.Find(pred); m != nil {
			return m
		}
	}
	return nil
}

// FindAll returns every descendant element matching pred in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if pred(c) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(pred)...)
	}
	return out
}

// FindTag returns the first descendant element with the given tag.
func (n *Node) FindTag(tag string) *Node {
	return n.Find(func(c *Node) bool { return c.Tag == tag })
}

// IsTag returns a predicate matching elements with the given tag name.
func IsTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Tag == tag }
}
