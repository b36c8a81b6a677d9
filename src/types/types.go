// types.go - Shared UI types: focus areas and the control sets rendered in the footer.
// A ControlSet satisfies help.KeyMap so the footer can render it with bubbles/help.

package types

import "github.com/charmbracelet/bubbles/key"

// FocusArea is the part of the screen that receives keys.
type FocusArea int

const (
	FocusInput FocusArea = iota
	FocusSidebar
	FocusModal
)

func (f FocusArea) String() string {
	switch f {
	case FocusSidebar:
		return "sidebar"
	case FocusModal:
		return "modal"
	default:
		return "input"
	}
}

// ControlSet is the group of bindings active in one focus area.
type ControlSet struct {
	Controls []key.Binding
	// Extra is only shown in the expanded help.
	Extra []key.Binding
}

// ShortHelp implements help.KeyMap.
func (cs ControlSet) ShortHelp() []key.Binding { return cs.Controls }

// FullHelp implements help.KeyMap.
func (cs ControlSet) FullHelp() [][]key.Binding {
	if len(cs.Extra) == 0 {
		return [][]key.Binding{cs.Controls}
	}
	return [][]key.Binding{cs.Controls, cs.Extra}
}

// KeyMap holds every binding of the chat screen.
type KeyMap struct {
	Send          key.Binding
	NewChat       key.Binding
	SwitchFocus   key.Binding
	ToggleSidebar key.Binding
	Up            key.Binding
	Down          key.Binding
	Open          key.Binding
	PickModel     key.Binding
	Profile       key.Binding
	ToggleTheme   key.Binding
	CopyAnswer    key.Binding
	Logout        key.Binding
	Help          key.Binding
	Quit          key.Binding
	Left          key.Binding
	Right         key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
}

// DefaultKeyMap is the binding layout used by the app.
var DefaultKeyMap = KeyMap{
	Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	NewChat:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
	SwitchFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
	ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "sidebar")),
	Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open chat")),
	PickModel:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "model")),
	Profile:       key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "profile")),
	ToggleTheme:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
	CopyAnswer:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy answer")),
	Logout:        key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
	Help:          key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
	Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
	Confirm:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}

// ControlSetFor returns the bindings shown for a focus area.
func (k KeyMap) ControlSetFor(f FocusArea) ControlSet {
	extra := []key.Binding{k.PickModel, k.Profile, k.ToggleTheme, k.CopyAnswer, k.ToggleSidebar, k.Logout}
	switch f {
	case FocusSidebar:
		return ControlSet{Controls: []key.Binding{k.Up, k.Down, k.Open, k.NewChat, k.SwitchFocus, k.Help, k.Quit}, Extra: extra}
	case FocusModal:
		return ControlSet{Controls: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Confirm, k.Cancel}}
	default:
		return ControlSet{Controls: []key.Binding{k.Send, k.NewChat, k.SwitchFocus, k.Help, k.Quit}, Extra: extra}
	}
}
