package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	tracks    key.Binding
	artists   key.Binding
	genres    key.Binding
	next      key.Binding
	timeRange key.Binding
	refresh   key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		tracks:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tracks")),
		artists:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "artists")),
		genres:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "genres")),
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		timeRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.timeRange, k.refresh, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.tracks, k.artists, k.genres, k.next},
		{k.timeRange, k.refresh},
		{k.help, k.quit},
	}
}
