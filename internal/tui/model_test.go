package tui

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	tea "github.com/charmbracelet/bubbletea"

	"iviweb/internal/convert"
	"iviweb/internal/pages"
	"iviweb/internal/screen"
	"iviweb/internal/source"
)

func testModel(t *testing.T, start string) Model {
	t.Helper()
	page := func(body string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte("<html><body>" + body + "</body></html>")}
	}
	site := fstest.MapFS{
		"start.html": page(`<p>STARTPAGE</p><input type="text" id="name"><a data-link="about:next">Go</a>`),
		"next.html":  page(`<p>NEXTPAGE</p>`),
		"error.html": page(`<p>ERRPAGE</p>`),
	}
	loader := source.NewLoader(source.Policy{}, nil, convert.NewRegistry(convert.Options{}), site)
	return New(context.Background(), loader, start, screen.Options{})
}

// step applies msg and runs any returned command synchronously.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, quit := out.(tea.QuitMsg); !quit {
				m = step(t, m, out)
			}
		}
	}
	return m
}

func initModel(t *testing.T, start string) Model {
	t.Helper()
	m := testModel(t, start)
	return step(t, m, m.Init()())
}

func TestInitLoadsStart(t *testing.T) {
	m := initModel(t, "about:start")
	if m.Scene() == nil || !strings.Contains(m.View(), "STARTPAGE") {
		t.Fatalf("start page not shown: %q", m.View())
	}
	if !strings.Contains(m.View(), "about:start") {
		t.Fatalf("status bar should show the source")
	}
}

func TestTypingAndNavigation(t *testing.T) {
	m := initModel(t, "about:start")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	el, err := m.Scene().Element("name")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if tb, ok := el.(screen.TextBox); !ok || tb.Content != "abc" {
		t.Fatalf("text not typed into the box: %#v", el)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "NEXTPAGE") {
		t.Fatalf("link not followed: %q", m.View())
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if !strings.Contains(m.View(), "STARTPAGE") {
		t.Fatalf("home did not return to start")
	}
}

func TestStartFailureShowsErrorPage(t *testing.T) {
	m := initModel(t, "about:missing")
	if !strings.Contains(m.View(), "ERRPAGE") {
		t.Fatalf("expected error page: %q", m.View())
	}
}

func TestQuit(t *testing.T) {
	m := initModel(t, "about:start")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestWindowSizeAppliesToNextLoad(t *testing.T) {
	m := initModel(t, pages.Start)
	m = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if m.opts.Width != 60 || m.opts.Height != 19 {
		t.Fatalf("unexpected opts %+v", m.opts)
	}
}
