package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"iviweb/internal/markup"
	"iviweb/internal/screen"
)

func TestFlatten_OrderAndLeftoverText(t *testing.T) {
	doc := mustParse(t, `<body><div>lead <p>para</p><span>tail</span></div><hr></body>`)
	body := doc.FindTag("body")
	before := len(body.FindTag("div").Children)

	tags := NewRegistry(Options{}).Flatten(body)
	var got []string
	for _, pt := range tags {
		got = append(got, pt.Node.Tag)
	}
	if strings.Join(got, ",") != "div,p,span,hr" {
		t.Fatalf("unexpected order %v", got)
	}
	if tags[0].Elements[0].Render() != "lead"+screen.Reset {
		t.Fatalf("leftover text not converted: %q", tags[0].Elements[0].Render())
	}
	if !tags[1].SpaceAfter || tags[1].SpaceBefore {
		t.Fatalf("unexpected hints for p: %+v", tags[1])
	}
	if !tags[3].SpaceBefore || !tags[3].SpaceAfter {
		t.Fatalf("unexpected hints for hr: %+v", tags[3])
	}
	if after := len(body.FindTag("div").Children); after != before {
		t.Fatalf("flatten mutated the tree: %d -> %d children", before, after)
	}
}

func TestFlatten_ListKeepsItsItems(t *testing.T) {
	doc := mustParse(t, `<body><ul><li>a</li><li>b</li></ul></body>`)
	tags := NewRegistry(Options{}).Flatten(doc.FindTag("body"))
	if len(tags) != 1 || tags[0].Node.Tag != "ul" {
		t.Fatalf("list should be converted as one tag, got %d", len(tags))
	}
}

func TestFlatten_Exclude(t *testing.T) {
	skip := markup.Element("span", nil, markup.Text("skip"))
	parent := markup.Element("div", nil,
		markup.Element("span", nil, markup.Text("keep")),
		markup.Element("div", nil, skip),
	)
	tags := NewRegistry(Options{}).Flatten(parent, skip)
	if len(tags) != 1 || tags[0].Node.Text() != "keep" {
		t.Fatalf("unexpected tags %+v", tags)
	}
}

func TestBreakDown_RequiresBody(t *testing.T) {
	doc := markup.Element("html", nil, markup.Element("head", nil))
	if _, err := NewRegistry(Options{}).BreakDown(doc); !errors.Is(err, ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestBreakDown_PacksAndFlushes(t *testing.T) {
	thirty := strings.Repeat("x", 30)
	doc := mustParse(t, `<html><head><title>T</title></head><body>
<span>`+thirty+`</span><span>`+thirty+`</span><span>`+thirty+`</span>
<p>para</p>
<span>after</span>
<input type="password">
</body></html>`)
	rows, err := NewRegistry(Options{ScreenWidth: 80}).BreakDown(doc)
	if err != nil {
		t.Fatalf("BreakDown error: %v", err)
	}
	var counts []int
	for _, r := range rows {
		counts = append(counts, len(r.Columns))
	}
	// title | span span | span p | span
	want := []int{1, 2, 2, 1}
	if len(counts) != len(want) {
		t.Fatalf("unexpected row shape %v", counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("unexpected row shape %v, want %v", counts, want)
		}
	}
	if !strings.Contains(rows[0].Text(), ">>>T<<<") {
		t.Fatalf("first row should carry the title: %q", rows[0].Text())
	}
	for _, r := range rows {
		if r.Spacing != 1 {
			t.Fatalf("rows should be followed by a blank line")
		}
		for _, ln := range r.Lines() {
			if ansi.StringWidth(ln) != 80 {
				t.Fatalf("line width %d: %q", ansi.StringWidth(ln), ln)
			}
		}
	}
}

func TestBreakDown_NoTitleNoHeadRow(t *testing.T) {
	doc := mustParse(t, `<p>only</p>`)
	rows, err := NewRegistry(Options{}).BreakDown(doc)
	if err != nil {
		t.Fatalf("BreakDown error: %v", err)
	}
	if len(rows) != 1 || !strings.HasPrefix(rows[0].Text(), "only") {
		t.Fatalf("unexpected rows %d", len(rows))
	}
}

func TestToScene_FormRoundTrip(t *testing.T) {
	doc := mustParse(t, `<html><body>
<form data-send-from-terminal="true" action="/post_data" method="post">
<input type="text" id="first" data-include-in-payload="true">
</form></body></html>`)
	s, err := NewRegistry(Options{}).ToScene(doc, screen.Options{Height: 20})
	if err != nil {
		t.Fatalf("ToScene error: %v", err)
	}
	its := s.Interactive()
	if len(its) != 2 {
		t.Fatalf("expected text box and button, got %d", len(its))
	}
	if _, ok := its[0].(screen.TextBox); !ok || !its[0].IsActive() {
		t.Fatalf("first interactive should be the active text box")
	}
	if _, err := s.Element("first"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
}
