package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the watch surface.
type keyMap struct {
	submit key.Binding
	copy   key.Binding
	open   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
		copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy transcript")),
		open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open video")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.copy, k.open, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.copy},
		{k.open, k.quit},
	}
}
