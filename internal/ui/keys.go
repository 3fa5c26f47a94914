package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Activate    key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	Close       key.Binding
	Pin         key.Binding
	NewWindow   key.Binding
	Dedupe      key.Binding
	Mark        key.Binding
	DropBefore  key.Binding
	DropAfter   key.Binding
	DropAtEnd   key.Binding
	Search      key.Binding
	Refresh     key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	SearchDone  key.Binding
	SearchClear key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Activate:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to tab")),
	Select:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
	SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	Close:       key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "close")),
	Pin:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
	NewWindow:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new window")),
	Dedupe:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "close duplicates")),
	Mark:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark to move")),
	DropBefore:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "drop before")),
	DropAfter:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "drop after")),
	DropAtEnd:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "drop at end")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	SearchDone:  key.NewBinding(key.WithKeys("enter", "esc", "up", "down")),
	SearchClear: key.NewBinding(key.WithKeys("ctrl+u")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Activate, k.Select, k.Close, k.Mark, k.Search, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Activate, k.Search, k.Refresh},
		{k.Select, k.SelectAll, k.Close, k.Pin, k.NewWindow, k.Dedupe},
		{k.Mark, k.DropBefore, k.DropAfter, k.DropAtEnd, k.Cancel, k.Quit},
	}
}
