package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevHole  key.Binding
	NextHole  key.Binding
	Increment key.Binding
	Decrement key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	NewRound  key.Binding
	Complete  key.Binding
	Delete    key.Binding
	Units     key.Binding
	Refresh   key.Binding
	Sync      key.Binding
	Export    key.Binding
	Import    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevHole: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous hole"),
		),
		NextHole: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next hole"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "add stroke"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "remove stroke"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next panel"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "previous panel"),
		),
		NewRound: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("Ctrl+N", "start round"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete round"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete round"),
		),
		Units: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toggle units"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh leaderboard"),
		),
		Sync: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("Ctrl+Y", "sync"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("Ctrl+E", "export backup"),
		),
		Import: key.NewBinding(
			key.WithKeys("ctrl+i"),
			key.WithHelp("Ctrl+I", "import backup"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h", "?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("Ctrl+Q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.Increment, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevHole, k.NextHole, k.Tab},
		{k.NewRound, k.Increment, k.Decrement, k.Complete, k.Delete},
		{k.Units, k.Refresh, k.Sync, k.Export, k.Import},
		{k.Help, k.Quit},
	}
}
