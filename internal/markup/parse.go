package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"iviweb/internal/system"
)

// Parse reads an HTML-like document and returns its root element. The
// parser always synthesizes html, head and body elements the way a browser
// does. Runs of whitespace in text are collapsed to single spaces and
// comments, doctypes and script/style contents are dropped.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	root := &Node{Type: ElementNode, Tag: "#document"}
	root.Children = convertChildren(doc)
	if els := root.Elements(); len(els) == 1 {
		return els[0], nil
	}
	return root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) { return Parse(strings.NewReader(s)) }

func convertChildren(parent *html.Node) []*Node {
	var out []*Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if c.Data == "script" || c.Data == "style" {
				continue
			}
			out = append(out, convertElement(c))
		case html.TextNode:
			if t := collapseSpace(c.Data); t != "" {
				out = append(out, Text(t))
			}
		}
	}
	return out
}

func convertElement(h *html.Node) *Node {
	attrs := make(map[string]string, len(h.Attr))
	for _, a := range h.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}
	n := &Node{Type: ElementNode, Tag: strings.ToLower(h.Data), Attrs: attrs}
	if raw, ok := attrs["style"]; ok {
		st, err := ParseStyle(raw)
		if err != nil {
			system.Logger.Debug("ignoring inline style", "tag", n.Tag, "err", err)
		} else {
			n.Style = st
		}
	}
	n.Children = convertChildren(h)
	return n
}

// collapseSpace folds whitespace runs into one space. A text node made only
// of whitespace yields "".
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}
