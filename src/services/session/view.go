// Package session owns the chat sessions of the signed-in user: the ordered
// in-memory list, its on-disk mirror, the active selection and the
// send lifecycle. Rendering is delegated to a View.
package session

import (
	"time"

	"ragchat/src/models"
)

// NoticeLevel classifies a user-visible notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// DefaultNoticeTTL is how long a notice stays on screen unless configured.
const DefaultNoticeTTL = 3 * time.Second

// Notice is a short-lived, non-blocking notification.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// View is the set of UI surfaces the controller drives.
// Implementations without a given surface treat the call as a no-op.
type View interface {
	RenderSessions(sessions []models.ChatSession, activeID models.ChatID)
	ShowMessages(msgs []models.Message)
	AppendMessage(msg models.Message)
	ClearMessages()
	ShowWelcome()
	ShowTyping()
	HideTyping()
	ScrollToEnd()
	CollapseSidebar()
	ViewportWidth() int
	SelectedModel() string
	Notify(n Notice)
}

// NopView implements View with no-ops. Embed it to implement a subset.
type NopView struct{}

func (NopView) RenderSessions([]models.ChatSession, models.ChatID) {}
func (NopView) ShowMessages([]models.Message)                      {}
func (NopView) AppendMessage(models.Message)                       {}
func (NopView) ClearMessages()                                     {}
func (NopView) ShowWelcome()                                       {}
func (NopView) ShowTyping()                                        {}
func (NopView) HideTyping()                                        {}
func (NopView) ScrollToEnd()                                       {}
func (NopView) CollapseSidebar()                                   {}
func (NopView) ViewportWidth() int                                 { return 0 }
func (NopView) SelectedModel() string                              { return "" }
func (NopView) Notify(Notice)                                      {}

var _ View = NopView{}
