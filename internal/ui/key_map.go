package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	language  key.Binding
	category  key.Binding
	search    key.Binding
	favorites key.Binding
	like      key.Binding
	generate  key.Binding
	inspire   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		language:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "language")),
		category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		favorites: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		like:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		inspire:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inspire")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.language, k.category, k.search},
		{k.favorites, k.like, k.generate, k.inspire},
		{k.quit},
	}
}
