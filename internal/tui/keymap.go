package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for the upload wizard.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Next       key.Binding
	Back       key.Binding
	Map        key.Binding
	Ignore     key.Binding
	SkipToggle key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter", "n"),
			key.WithHelp("enter", "next step"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "left"),
			key.WithHelp("b", "back"),
		),
		Map: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "map column"),
		),
		Ignore: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "ignore column"),
		),
		SkipToggle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle skip-invalid"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "cancel wizard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
