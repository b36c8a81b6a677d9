// menu.go - Contains MenuModal for picking one entry from a vertical list, used for model selection.

package dialogs

import (
	"strings"

	"ragchat/src/components/modals"
	"ragchat/src/components/theme"
	"ragchat/src/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem is one row of a MenuModal.
type MenuItem struct {
	Label       string
	Description string
}

// MenuModal is a reusable modal for displaying a menu with options.
type MenuModal struct {
	modals.BaseModal
	Title    string
	Items    []MenuItem
	Current  int
	OnSelect func(index int) tea.Cmd
	keys     types.KeyMap
}

// NewMenuModal creates a menu. current marks the active entry (-1 for none).
func NewMenuModal(title string, items []MenuItem, current int, onSelect func(int) tea.Cmd, closeSelf modals.CloseSelfFunc) *MenuModal {
	return &MenuModal{
		BaseModal: modals.BaseModal{CloseSelf: closeSelf},
		Title:     title,
		Items:     items,
		Current:   current,
		OnSelect:  onSelect,
		keys:      types.DefaultKeyMap,
	}
}

// Open shows the menu with the cursor on the current entry.
func (m *MenuModal) Open() {
	m.BaseModal.Open()
	if m.Current >= 0 && m.Current < len(m.Items) {
		m.Selected = m.Current
	}
}

// Update handles up/down to navigate, enter to select, esc to close.
func (m *MenuModal) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsOpen() {
		return nil
	}
	switch {
	case key.Matches(km, m.keys.Up):
		if len(m.Items) > 0 {
			m.Selected = (m.Selected - 1 + len(m.Items)) % len(m.Items)
		}
	case key.Matches(km, m.keys.Down):
		if len(m.Items) > 0 {
			m.Selected = (m.Selected + 1) % len(m.Items)
		}
	case key.Matches(km, m.keys.Confirm):
		idx := m.Selected
		m.Close()
		if m.OnSelect != nil && idx < len(m.Items) {
			return m.OnSelect(idx)
		}
	case key.Matches(km, m.keys.Cancel):
		m.Close()
	}
	return nil
}

// ViewRegion renders the menu centered in the given region.
// The title is shown above, the selected option is highlighted and the current one ticked.
func (m *MenuModal) ViewRegion(regionWidth, regionHeight int, st *theme.Styles) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.Title) + "\n\n")
	if len(m.Items) == 0 {
		b.WriteString(st.Muted.Render("Nothing to choose from") + "\n")
	}
	for i, it := range m.Items {
		mark := "  "
		if i == m.Current {
			mark = "✓ "
		}
		line := mark + it.Label
		if it.Description != "" {
			line += "  " + st.Muted.Render(it.Description)
		}
		style := lipgloss.NewStyle().Padding(0, 1)
		if i == m.Selected {
			style = st.Selected.Padding(0, 1)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	box := st.Modal.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(regionWidth, regionHeight, lipgloss.Center, lipgloss.Center, box)
}
