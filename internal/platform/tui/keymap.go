package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// MatchKeyMap defines the key bindings used during a match.
type MatchKeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Drop   key.Binding
	Remove key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MatchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Drop, k.Remove, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MatchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Drop, k.Remove},
		{k.Help, k.Quit},
	}
}

// DefaultMatchKeyMap returns default key bindings.
func DefaultMatchKeyMap() MatchKeyMap {
	return MatchKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h", "a"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "d"),
			key.WithHelp("→/l", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("↑/k", "up (remove mode)"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("↓/j", "down (remove mode)"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "drop / remove"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "p"),
			key.WithHelp("x", "power-up"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// columnKey maps the digit keys 1-9 to a zero-based column.
func columnKey(msg tea.KeyMsg) (int, bool) {
	switch s := msg.String(); s {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return int(s[0] - '1'), true
	}
	return 0, false
}
