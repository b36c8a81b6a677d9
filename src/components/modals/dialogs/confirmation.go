// confirmation.go - Contains the ConfirmationModal for displaying confirmation dialogs with 1-3 options.
// Update logic supports left/right navigation, enter to select, esc to close/cancel.

package dialogs

import (
	"fmt"

	"ragchat/src/components/modals"
	"ragchat/src/components/theme"
	"ragchat/src/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmationModal is a reusable modal for confirmation dialogs (1-3 options).
type ConfirmationModal struct {
	modals.BaseModal
	keys types.KeyMap
}

// NewConfirmationModal creates a new ConfirmationModal with the given message, options, and closeSelf callback.
func NewConfirmationModal(message string, options []modals.ModalOption, closeSelf modals.CloseSelfFunc) (*ConfirmationModal, error) {
	if len(options) < 1 || len(options) > 3 {
		return nil, fmt.Errorf("confirmation modal needs 1-3 options, got %d", len(options))
	}
	return &ConfirmationModal{
		BaseModal: modals.BaseModal{
			Message:   message,
			Options:   options,
			CloseSelf: closeSelf,
		},
		keys: types.DefaultKeyMap,
	}, nil
}

func (m *ConfirmationModal) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsOpen() {
		return nil
	}
	switch {
	case key.Matches(km, m.keys.Left):
		m.Selected = (m.Selected + len(m.Options) - 1) % len(m.Options)
	case key.Matches(km, m.keys.Right), km.String() == "tab":
		m.Selected = (m.Selected + 1) % len(m.Options)
	case key.Matches(km, m.keys.Confirm):
		opt := m.Options[m.Selected]
		m.Close()
		if opt.OnSelect != nil {
			return opt.OnSelect()
		}
	case key.Matches(km, m.keys.Cancel):
		m.Close()
	}
	return nil
}

func (m *ConfirmationModal) ViewRegion(regionWidth, regionHeight int, st *theme.Styles) string {
	msg := lipgloss.NewStyle().Bold(true).Render(m.Message)
	var opts string
	for i, opt := range m.Options {
		style := lipgloss.NewStyle().Padding(0, 2)
		if i == m.Selected {
			style = st.Selected.Padding(0, 2)
		}
		opts += style.Render(opt.Label)
	}
	box := st.Modal.Align(lipgloss.Center).Render(msg + "\n\n" + opts)
	return lipgloss.Place(regionWidth, regionHeight, lipgloss.Center, lipgloss.Center, box)
}
