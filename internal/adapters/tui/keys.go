package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the board bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	MoveBack key.Binding
	MoveNext key.Binding
	New      key.Binding
	Delete   key.Binding
	Filter   key.Binding
	Reload   key.Binding
	Logout   key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Tab      key.Binding
	Submit   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "lane")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "lane")),
		MoveBack: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move back")),
		MoveNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move on")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "priority")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("y")),
		Tab:      key.NewBinding(key.WithKeys("tab", "shift+tab")),
		Submit:   key.NewBinding(key.WithKeys("enter")),
	}
}

// ShortHelp is the help line under the board.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.MoveBack, k.MoveNext, k.New, k.Delete, k.Filter, k.Reload, k.Logout, k.Quit}
}
