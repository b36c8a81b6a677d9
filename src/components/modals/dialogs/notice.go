// notice.go - Auto-dismissing notification toast.

package dialogs

import (
	"time"

	"ragchat/src/components/theme"
	"ragchat/src/services/session"

	tea "github.com/charmbracelet/bubbletea"
)

// NoticeExpiredMsg is delivered when a toast's lifetime ends.
type NoticeExpiredMsg struct {
	ID int
}

// Toast shows one notice at a time; a newer notice replaces the current one.
type Toast struct {
	TTL     time.Duration
	current *session.Notice
	id      int
}

func NewToast(ttl time.Duration) *Toast {
	if ttl <= 0 {
		ttl = session.DefaultNoticeTTL
	}
	return &Toast{TTL: ttl}
}

// Show displays n and schedules its expiry.
func (t *Toast) Show(n session.Notice) tea.Cmd {
	t.id++
	t.current = &n
	id := t.id
	return tea.Tick(t.TTL, func(time.Time) tea.Msg { return NoticeExpiredMsg{ID: id} })
}

// Expire hides the toast if msg refers to the notice still on screen.
func (t *Toast) Expire(msg NoticeExpiredMsg) {
	if msg.ID == t.id {
		t.current = nil
	}
}

// Current returns the visible notice.
func (t *Toast) Current() (session.Notice, bool) {
	if t.current == nil {
		return session.Notice{}, false
	}
	return *t.current, true
}

func (t *Toast) View(st *theme.Styles) string {
	if t.current == nil {
		return ""
	}
	switch t.current.Level {
	case session.NoticeError:
		return st.NoticeError.Render("✗ " + t.current.Text)
	case session.NoticeSuccess:
		return st.NoticeOK.Render("✓ " + t.current.Text)
	default:
		return st.NoticeInfo.Render("ℹ " + t.current.Text)
	}
}
