package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	legacy     key.Binding
	oneTap     key.Binding
	credential key.Binding
	cancel     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		legacy:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sign in with browser")),
		oneTap:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign in with device code")),
		credential: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "use saved credential")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.legacy, k.oneTap, k.credential},
		{k.up, k.down},
		{k.cancel, k.quit},
	}
}
