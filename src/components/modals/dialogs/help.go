// help.go - Contains InfoModal for displaying read-only content: key help and the profile card.

package dialogs

import (
	"ragchat/src/components/modals"
	"ragchat/src/components/theme"
	"ragchat/src/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InfoModal displays a title and a block of text until dismissed.
type InfoModal struct {
	modals.BaseModal
	Title string
	keys  types.KeyMap
}

func NewInfoModal(title, content string, closeSelf modals.CloseSelfFunc) *InfoModal {
	return &InfoModal{
		BaseModal: modals.BaseModal{Message: content, CloseSelf: closeSelf},
		Title:     title,
		keys:      types.DefaultKeyMap,
	}
}

// SetContent replaces the body, e.g. once a profile has loaded.
func (m *InfoModal) SetContent(content string) { m.Message = content }

// Update closes on esc or enter.
func (m *InfoModal) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && m.IsOpen() {
		if key.Matches(km, m.keys.Cancel) || key.Matches(km, m.keys.Confirm) {
			m.Close()
		}
	}
	return nil
}

func (m *InfoModal) ViewRegion(regionWidth, regionHeight int, st *theme.Styles) string {
	title := lipgloss.NewStyle().Bold(true).Render(m.Title)
	hint := st.Muted.Render("esc to close")
	box := st.Modal.Render(title + "\n\n" + m.Message + "\n\n" + hint)
	return lipgloss.Place(regionWidth, regionHeight, lipgloss.Center, lipgloss.Center, box)
}
