// Package tui is the local interactive viewer: a bubbletea program that
// drives a scene directly instead of over a network session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"iviweb/internal/pages"
	"iviweb/internal/screen"
	"iviweb/internal/source"
	"iviweb/internal/system"
)

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#dbd7ca"}).
			Background(lipgloss.AdaptiveColor{Light: "#dddddd", Dark: "#292929"})
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cb7676")).Bold(true)
)

type loadedMsg struct {
	src   string
	scene *screen.Scene
	err   error
}

// Model wraps one scene. The zero value is not usable; call New.
type Model struct {
	ctx    context.Context
	loader *source.Loader
	opts   screen.Options
	start  string
	keys   keyMap

	scene   *screen.Scene
	loaded  string
	loading bool
	errText string
	width   int
}

// New returns a viewer that opens start on Init. opts.Keys are the codes
// forwarded to the scene.
func New(ctx context.Context, loader *source.Loader, start string, opts screen.Options) Model {
	if opts.Keys == (screen.Keymap{}) {
		opts.Keys = screen.DefaultKeymap()
	}
	if start == "" {
		start = pages.Start
	}
	return Model{ctx: ctx, loader: loader, opts: opts, start: start, keys: defaultKeyMap(), loading: true}
}

func (m Model) Init() tea.Cmd { return m.load(m.start) }

func (m Model) load(src string) tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		scene, err := m.loader.LoadScene(m.ctx, src, opts)
		return loadedMsg{src: src, scene: scene, err: err}
	}
}

// Scene returns the scene currently shown, or nil before the first load.
func (m Model) Scene() *screen.Scene { return m.scene }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// applies from the next load; reloading would discard typed input
		m.width = msg.Width
		m.opts.Width = msg.Width
		m.opts.Height = max(2, msg.Height-1)
		return m, nil
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			system.Logger.Warn("load failed", "source", msg.src, "err", msg.err)
			m.errText = msg.err.Error()
			if m.scene == nil {
				m.loaded = pages.Error
				scene, err := m.loader.LoadScene(m.ctx, pages.Error, m.opts)
				if err != nil {
					return m, tea.Quit
				}
				m.scene = scene
			} else {
				// keep the old page but clear the pending navigation
				m.scene.SetSource(m.loaded)
			}
			return m, nil
		}
		m.errText = ""
		m.scene = msg.scene
		m.loaded = msg.src
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.scene == nil || m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Home):
			m.scene.SetSource(m.start)
		case key.Matches(msg, m.keys.Reload):
			return m.navigate(m.loaded)
		case key.Matches(msg, m.keys.Up):
			m.scene.Update(m.ctx, m.opts.Keys.Up)
		case key.Matches(msg, m.keys.Down):
			m.scene.Update(m.ctx, m.opts.Keys.Down)
		case key.Matches(msg, m.keys.Left):
			m.scene.Update(m.ctx, m.opts.Keys.Left)
		case key.Matches(msg, m.keys.Right):
			m.scene.Update(m.ctx, m.opts.Keys.Right)
		case key.Matches(msg, m.keys.Confirm):
			m.scene.Update(m.ctx, m.opts.Keys.Confirm)
		case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			m.scene.Update(m.ctx, string(msg.Runes))
		}
		if m.scene.Source() != m.loaded || m.scene.ForceReload() {
			return m.navigate(source.Resolve(m.loaded, m.scene.Source()))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) navigate(src string) (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.load(src)
}

func (m Model) View() string {
	var b strings.Builder
	if m.scene != nil {
		b.WriteString(strings.Join(m.scene.Frame(), "\n"))
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) statusBar() string {
	var left string
	switch {
	case m.loading:
		left = "loading…"
	case m.errText != "":
		left = errStyle.Render(m.errText)
	case m.scene != nil:
		left = fmt.Sprintf("%s  %d/%d", m.loaded, m.scene.ScrollOffset(), m.scene.TotalHeight())
	}
	bar := " " + left + "  " + m.keys.help()
	if m.width > 0 {
		return barStyle.Width(m.width).MaxHeight(1).Render(bar)
	}
	return barStyle.Render(bar)
}

// Run starts the viewer on the alternate screen.
func Run(ctx context.Context, loader *source.Loader, start string, opts screen.Options) error {
	p := tea.NewProgram(New(ctx, loader, start, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
