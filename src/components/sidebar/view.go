// components/sidebar/view.go - Rendering for the sidebar.

package sidebar

import (
	"fmt"
	"strings"

	"ragchat/src/components/theme"

	"github.com/charmbracelet/lipgloss"
)

// View renders the sidebar, or nothing when collapsed.
func (s *Model) View(st *theme.Styles) string {
	if s.Collapsed || s.Width <= 4 {
		return ""
	}
	inner := s.Width - 4

	var b strings.Builder
	b.WriteString(st.SidebarTitle.Render("Chats") + "\n")
	b.WriteString(st.Muted.Render(strings.Repeat("─", inner)) + "\n")

	rows := s.Height - 8
	if rows < 1 {
		rows = 1
	}
	start := 0
	if s.Cursor >= rows {
		start = s.Cursor - rows + 1
	}

	if len(s.Sessions) == 0 {
		b.WriteString(st.Muted.Render("No chats yet") + "\n")
	}
	for i := start; i < len(s.Sessions) && i < start+rows; i++ {
		sess := s.Sessions[i]
		title := truncate(sess.Title, inner-2)
		marker := "  "
		style := st.Item
		if sess.ID == s.ActiveID {
			marker = "● "
			style = st.ActiveItem
		}
		if s.Focused && i == s.Cursor {
			style = st.CursorItem
		}
		b.WriteString(style.Render(marker+title) + "\n")
	}

	b.WriteString("\n" + st.Muted.Render("[ctrl+n] New chat") + "\n")
	b.WriteString(st.Muted.Render(strings.Repeat("─", inner)) + "\n")
	b.WriteString(st.Item.Render(truncate(s.UserName, inner)) + "\n")
	model := s.ModelName
	if model == "" {
		model = "default model"
	}
	b.WriteString(st.Muted.Render(truncate(fmt.Sprintf("model: %s", model), inner)))

	return st.Sidebar.Width(s.Width - 2).Height(s.Height - 2).Render(b.String())
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > max {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
