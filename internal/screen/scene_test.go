package screen

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

type recordingSubmitter struct {
	endpoint string
	method   string
	fields   url.Values
	final    string
	err      error
}

func (r *recordingSubmitter) Submit(_ context.Context, endpoint, method string, fields url.Values) (string, error) {
	r.endpoint, r.method, r.fields = endpoint, method, fields
	return r.final, r.err
}

func oneColumnRows(width int, els ...Element) []*Row {
	rows := make([]*Row, 0, len(els))
	for _, e := range els {
		rows = append(rows, NewRow([]*Column{NewColumn(e)}, width))
	}
	return rows
}

func buttonWithID(id, label string, ev *Event) Button {
	b := NewButton(0, label, ev, "", true)
	b.ID = id
	return b
}

func countActive(s *Scene) int {
	n := 0
	for _, it := range s.Interactive() {
		if it.IsActive() {
			n++
		}
	}
	return n
}

func TestScene_ExactlyOneActiveWhileCycling(t *testing.T) {
	s, err := NewScene(oneColumnRows(40,
		buttonWithID("a", "one", nil),
		Text("filler"),
		buttonWithID("b", "two", nil),
		buttonWithID("c", "three", nil),
	), Options{Width: 40, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	keys := DefaultKeymap()
	steps := []struct {
		key  string
		want int
	}{
		{keys.Right, 1},
		{keys.Right, 2},
		{keys.Right, 0},
		{keys.Left, 2},
		{keys.Left, 1},
		{"x", 1},
	}
	for i, st := range steps {
		s.Update(context.Background(), st.key)
		if got := countActive(s); got != 1 {
			t.Fatalf("step %d: %d active elements", i, got)
		}
		if s.ActiveIndex() != st.want {
			t.Fatalf("step %d: active index %d, want %d", i, s.ActiveIndex(), st.want)
		}
		if !s.Interactive()[st.want].IsActive() {
			t.Fatalf("step %d: element %d not flagged active", i, st.want)
		}
	}
}

func TestScene_NoInteractiveIgnoresNavigation(t *testing.T) {
	s, err := NewScene(oneColumnRows(20, Text("a"), Text("b")), Options{Width: 20, Height: 5})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	s.Update(context.Background(), DefaultKeymap().Right)
	if len(s.Interactive()) != 0 {
		t.Fatalf("unexpected interactive elements")
	}
}

func TestScene_ScrollSaturates(t *testing.T) {
	els := make([]Element, 30)
	for i := range els {
		els[i] = Text("line")
	}
	s, err := NewScene(oneColumnRows(20, els...), Options{Width: 20, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	if s.TotalHeight() != 30 {
		t.Fatalf("expected total height 30, got %d", s.TotalHeight())
	}
	keys := DefaultKeymap()
	for i := 0; i < 100; i++ {
		s.Update(context.Background(), keys.Down)
		if off := s.ScrollOffset(); off < 0 || off > s.TotalHeight() {
			t.Fatalf("offset %d out of range", off)
		}
	}
	if s.ScrollOffset() != s.TotalHeight() {
		t.Fatalf("expected offset to saturate at %d, got %d", s.TotalHeight(), s.ScrollOffset())
	}
	s.Update(context.Background(), keys.Up)
	if s.ScrollOffset() != 30-3 {
		t.Fatalf("expected one step up (3 lines), got offset %d", s.ScrollOffset())
	}
	for i := 0; i < 100; i++ {
		s.Update(context.Background(), keys.Up)
	}
	if s.ScrollOffset() != 0 {
		t.Fatalf("expected offset 0, got %d", s.ScrollOffset())
	}
}

func TestScene_RenderViewportAndScrollbar(t *testing.T) {
	els := make([]Element, 30)
	for i := range els {
		els[i] = Text("line")
	}
	s, err := NewScene(oneColumnRows(20, els...), Options{Width: 20, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	lines := strings.Split(s.Render(), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 visible lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], "^") || !strings.HasSuffix(lines[9], "V") {
		t.Fatalf("missing scrollbar ends: %q / %q", lines[0], lines[9])
	}
	if !strings.HasSuffix(lines[1], "O") {
		t.Fatalf("thumb should sit at the top: %q", lines[1])
	}
	for _, ln := range lines {
		if ansi.StringWidth(ln) != 20 {
			t.Fatalf("line width %d: %q", ansi.StringWidth(ln), ln)
		}
	}
}

func TestScene_ShortContentHasNoScrollbar(t *testing.T) {
	s, err := NewScene(oneColumnRows(10, Text("a"), Text("b")), Options{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	frame := s.Frame()
	if len(frame) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(frame))
	}
	for _, ln := range frame {
		if strings.ContainsAny(ln, "^OV") {
			t.Fatalf("unexpected scrollbar glyph in %q", ln)
		}
	}
}

func TestScene_ButtonChangesSource(t *testing.T) {
	ev := ChangeSource("next.html")
	s, err := NewScene(oneColumnRows(40, buttonWithID("go", "Go", &ev)), Options{Width: 40, Height: 5, Source: "start.html"})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	s.Update(context.Background(), "\r")
	if s.Source() != "next.html" {
		t.Fatalf("expected source next.html, got %q", s.Source())
	}
	if s.ForceReload() {
		t.Fatalf("navigation should not force a reload")
	}
}

func TestScene_InactiveButtonDoesNothing(t *testing.T) {
	ev := ChangeSource("next.html")
	s, err := NewScene(oneColumnRows(40,
		buttonWithID("first", "First", nil),
		buttonWithID("go", "Go", &ev),
	), Options{Width: 40, Height: 5, Source: "start.html"})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	s.Update(context.Background(), "\r")
	if s.Source() != "start.html" {
		t.Fatalf("source changed by inactive button: %q", s.Source())
	}
}

func TestScene_FormSubmission(t *testing.T) {
	box := NewTextBox(10, "", "")
	box.ID = "name"
	ev := SendInputTo([]string{"name", "missing"}, "http://example.test/post_data", "post")
	sub := &recordingSubmitter{final: "http://example.test/display_data?name=bob"}
	s, err := NewScene([]*Row{
		NewRow([]*Column{NewColumn(box)}, 40),
		NewRow([]*Column{NewColumn(buttonWithID("send", "Send", &ev))}, 40),
	}, Options{Width: 40, Height: 10, Source: "form.html", Submitter: sub})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	ctx := context.Background()
	s.Update(ctx, "bob")
	s.Update(ctx, "42")
	s.Update(ctx, DefaultKeymap().Right)
	s.Update(ctx, "\r")

	if sub.endpoint != "http://example.test/post_data" || sub.method != "post" {
		t.Fatalf("unexpected submission target: %s %s", sub.method, sub.endpoint)
	}
	if got := sub.fields.Get("name"); got != "bob" {
		t.Fatalf("expected name=bob, got %q", got)
	}
	if sub.fields.Has("missing") {
		t.Fatalf("missing id must be skipped")
	}
	if s.Source() != sub.final {
		t.Fatalf("source not updated: %q", s.Source())
	}
	if !s.ForceReload() {
		t.Fatalf("submission should force a reload")
	}
	s.Update(ctx, "")
	if s.ForceReload() {
		t.Fatalf("force reload must reset on the next update")
	}
}

func TestScene_FailedSubmissionKeepsSource(t *testing.T) {
	ev := SendInputTo(nil, "http://example.test/post_data", "post")
	sub := &recordingSubmitter{err: errors.New("connection refused")}
	s, err := NewScene(oneColumnRows(40, buttonWithID("send", "Send", &ev)), Options{Width: 40, Height: 5, Source: "form.html", Submitter: sub})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	s.Update(context.Background(), "\r")
	if s.Source() != "form.html" || s.ForceReload() {
		t.Fatalf("failed submission changed state: %q reload=%v", s.Source(), s.ForceReload())
	}
}

func TestScene_CursorFollowsActiveTextBox(t *testing.T) {
	box := NewTextBox(10, "ab", "")
	s, err := NewScene(oneColumnRows(40, Text("title"), box), Options{Width: 40, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	// the box starts on line 1; the caret sits after "ab" on its middle line
	want := ansi.CursorPosition(3+1, 2+1)
	if out := s.Render(); !strings.HasSuffix(out, want) {
		t.Fatalf("expected render to end with %q, got %q", want, out[max(0, len(out)-12):])
	}
	s.Update(context.Background(), "c")
	want = ansi.CursorPosition(4+1, 2+1)
	lines := s.TerminalLines()
	if got := string(lines[len(lines)-1]); got != want {
		t.Fatalf("expected trailing cursor sequence %q, got %q", want, got)
	}
	if box := s.Interactive()[0].(TextBox); box.Value() != "abc" {
		t.Fatalf("unexpected content %q", box.Value())
	}
}

func TestScene_CursorStaysOnElementAcrossRedraws(t *testing.T) {
	box := NewTextBox(10, "ab", "")
	s, err := NewScene(oneColumnRows(40, Text("title"), box), Options{Width: 40, Height: 10})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	want := ansi.CursorPosition(3+1, 2+1)
	// digits are rejected by the box, so none of these keys move the caret
	for i, key := range []string{"", "1", "2", "3"} {
		s.Update(context.Background(), key)
		lines := s.TerminalLines()
		if got := string(lines[len(lines)-1]); got != want {
			t.Fatalf("frame %d (key %q): expected trailing %q, got %q", i, key, want, got)
		}
	}
	if out := s.Render(); !strings.HasSuffix(out, want) {
		t.Fatalf("render should also end with %q", want)
	}
}

func TestScene_CursorParksWhenActiveScrolledAway(t *testing.T) {
	rows := oneColumnRows(20, NewTextBox(8, "", ""))
	for i := 0; i < 6; i++ {
		rows = append(rows, oneColumnRows(20, Text("line"))...)
	}
	s, err := NewScene(rows, Options{Width: 20, Height: 3, ScrollSpeed: 1})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	s.Update(context.Background(), DefaultKeymap().Down)
	lines := s.TerminalLines()
	if last := string(lines[len(lines)-1]); strings.HasPrefix(last, "\x1b[") && strings.HasSuffix(last, "H") {
		t.Fatalf("no cursor move expected while the box is out of view, got %q", last)
	}
}

func TestScene_DuplicateIDs(t *testing.T) {
	_, err := NewScene(oneColumnRows(20, buttonWithID("x", "a", nil), buttonWithID("x", "b", nil)), Options{})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestScene_LookupSuggestsIDs(t *testing.T) {
	box := NewTextBox(10, "", "")
	box.ID = "name"
	s, err := NewScene(oneColumnRows(20, box, buttonWithID("send", "Send", nil)), Options{})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	if _, err := s.Element("name"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	_, err = s.Element("nme")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var le *LookupError
	if !errors.As(err, &le) || len(le.Suggestions) == 0 || le.Suggestions[0] != "name" {
		t.Fatalf("expected suggestion name, got %+v", le)
	}
	if ids := s.ElementIDs(); len(ids) != 2 || ids[0] != "name" || ids[1] != "send" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestScene_DialInString(t *testing.T) {
	s, err := NewScene(nil, Options{Width: 4, Height: 3})
	if err != nil {
		t.Fatalf("NewScene error: %v", err)
	}
	out := s.DialInString()
	if !strings.HasSuffix(out, "AAAA\nAAAA\n") || strings.Count(out, "AAAA") != 2 {
		t.Fatalf("unexpected dial-in block %q", out)
	}
}

func TestTextBox_DisplayKeepsTail(t *testing.T) {
	box := NewTextBox(6, "abcdefgh", "")
	lines := strings.Split(box.Render(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "|efgh|" {
		t.Fatalf("unexpected middle line %q", lines[1])
	}
	if box.Value() != "abcdefgh" {
		t.Fatalf("content must not be truncated: %q", box.Value())
	}
	box = box.WithActive(true).(TextBox)
	if lines := strings.Split(box.Render(), "\n"); !strings.HasPrefix(lines[1], ">") {
		t.Fatalf("active box should show a caret: %q", lines[1])
	}
}

func TestTextBox_IgnoresNonLetters(t *testing.T) {
	box := NewTextBox(10, "", "").WithActive(true)
	for _, k := range []string{"a", "1", "b c", "\r", "Z"} {
		box, _ = box.OnKeypress(Key{Text: k})
	}
	if got := box.(TextBox).Value(); got != "aZ" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestButton_RenderBoxed(t *testing.T) {
	b := NewButton(6, "Send", nil, "", false)
	lines := strings.Split(b.Render(), "\n")
	if lines[0] != "========" || lines[1] != "|Send  |" {
		t.Fatalf("unexpected render %q", lines)
	}
	b = b.WithActive(true).(Button)
	lines = strings.Split(b.Render(), "\n")
	if lines[0] != "........" || lines[1] != ">Send  |" {
		t.Fatalf("unexpected active render %q", lines)
	}
}

func TestButton_LongLabelKeepsTail(t *testing.T) {
	b := NewButton(4, "Submit", nil, "", true)
	if got := b.Render(); got != "|bmit|"+Reset {
		t.Fatalf("unexpected render %q", got)
	}
	if b.Label != "Submit" {
		t.Fatalf("label must not be truncated: %q", b.Label)
	}
}
