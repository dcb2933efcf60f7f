package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Confirm key.Binding
	Home    key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
		Left:    key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "previous")),
		Right:   key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		Home:    key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "start page")),
		Reload:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) help() string {
	var out string
	for i, b := range []key.Binding{k.Right, k.Confirm, k.Home, k.Quit} {
		if i > 0 {
			out += " · "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
