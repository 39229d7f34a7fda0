package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the dashboard's key bindings.
type KeyMap struct {
	Quit     key.Binding
	Pause    key.Binding
	SortNext key.Binding
	Reverse  key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the bindings shown in the footer.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause"),
		),
		SortNext: key.NewBinding(
			key.WithKeys("s", "tab"),
			key.WithHelp("s", "sort"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
	}
}

// footerBindings returns the bindings listed in the footer, in order.
func (k KeyMap) footerBindings() []key.Binding {
	return []key.Binding{k.SortNext, k.Reverse, k.Pause, k.Up, k.Down, k.Quit}
}
