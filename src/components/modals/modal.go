// modal.go - Shared modal plumbing: options, open/close state and the Modal interface.

package modals

import (
	"ragchat/src/components/theme"

	tea "github.com/charmbracelet/bubbletea"
)

// ModalOption is one selectable choice of a modal.
type ModalOption struct {
	Label    string
	OnSelect func() tea.Cmd
}

// CloseSelfFunc is called when a modal closes itself.
type CloseSelfFunc func()

// BaseModal holds the state every modal shares.
type BaseModal struct {
	Message   string
	Options   []ModalOption
	CloseSelf CloseSelfFunc
	Selected  int
	open      bool
}

// Open shows the modal with the first option selected.
func (b *BaseModal) Open() {
	b.open = true
	b.Selected = 0
}

// Close hides the modal and runs CloseSelf.
func (b *BaseModal) Close() {
	if !b.open {
		return
	}
	b.open = false
	if b.CloseSelf != nil {
		b.CloseSelf()
	}
}

func (b *BaseModal) IsOpen() bool { return b.open }

// Modal is a popover the app renders above the chat screen.
// Only the top-most open modal receives keys.
type Modal interface {
	Open()
	Close()
	IsOpen() bool
	Update(msg tea.Msg) tea.Cmd
	ViewRegion(width, height int, st *theme.Styles) string
}
