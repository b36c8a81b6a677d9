package dialogs

import (
	"testing"
	"time"

	"ragchat/src/components/modals"
	"ragchat/src/components/theme"
	"ragchat/src/services/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chosenMsg string

func TestConfirmationModal(t *testing.T) {
	closed := 0
	m, err := NewConfirmationModal("Log out?", []modals.ModalOption{
		{Label: "Cancel"},
		{Label: "Log out", OnSelect: func() tea.Cmd { return func() tea.Msg { return chosenMsg("logout") } }},
	}, func() { closed++ })
	require.NoError(t, err)

	assert.Nil(t, m.Update(tea.KeyMsg{Type: tea.KeyEnter}), "closed modal ignores keys")

	m.Open()
	assert.Contains(t, m.ViewRegion(60, 10, theme.New("dark")), "Log out?")
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, chosenMsg("logout"), cmd())
	assert.False(t, m.IsOpen())
	assert.Equal(t, 1, closed)

	m.Open()
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsOpen())
	assert.Equal(t, 2, closed)
}

func TestConfirmationModalOptionCount(t *testing.T) {
	_, err := NewConfirmationModal("?", nil, nil)
	assert.Error(t, err)
}

func TestMenuModal(t *testing.T) {
	var picked = -1
	m := NewMenuModal("Model", []MenuItem{{Label: "a"}, {Label: "b", Description: "second"}, {Label: "c"}}, 1,
		func(i int) tea.Cmd { picked = i; return nil }, nil)

	m.Open()
	assert.Equal(t, 1, m.Selected, "opens on the current entry")
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.Selected)
	assert.Contains(t, m.ViewRegion(60, 12, theme.New("light")), "second")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 0, picked)
	assert.False(t, m.IsOpen())
}

func TestInfoModal(t *testing.T) {
	m := NewInfoModal("Profile", "loading...", nil)
	m.Open()
	m.SetContent("Ann")
	assert.Contains(t, m.ViewRegion(50, 10, theme.New("dark")), "Ann")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsOpen())
}

func TestToast(t *testing.T) {
	toast := NewToast(time.Second)
	_, ok := toast.Current()
	assert.False(t, ok)

	require.NotNil(t, toast.Show(session.Notice{Level: session.NoticeError, Text: "first"}))
	toast.Show(session.Notice{Level: session.NoticeInfo, Text: "second"})
	n, ok := toast.Current()
	require.True(t, ok)
	assert.Equal(t, "second", n.Text)

	toast.Expire(NoticeExpiredMsg{ID: 1})
	_, ok = toast.Current()
	assert.True(t, ok, "a stale expiry does not hide the newer notice")

	toast.Expire(NoticeExpiredMsg{ID: 2})
	_, ok = toast.Current()
	assert.False(t, ok)
	assert.Empty(t, toast.View(theme.New("dark")))
}

func TestFormModal(t *testing.T) {
	f := NewFormModal("Sign in", []FormField{{Label: "Email"}, {Label: "Password", Secret: true}}, theme.New("dark"))

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a@b.c")})
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pw")})
	assert.NotContains(t, f.View(), "pw")
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotNil(t, cmd)
	assert.True(t, f.Submitted)
	assert.Equal(t, []string{"a@b.c", "pw"}, f.Values())
}
