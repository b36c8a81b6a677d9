package app

import (
	"testing"

	"ragchat/src/models"
	"ragchat/src/services/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestBridgeWithoutSender(t *testing.T) {
	b := NewBridge()
	assert.NotPanics(t, func() { b.ShowWelcome() })
	assert.Equal(t, 0, b.ViewportWidth())
	assert.Equal(t, "", b.SelectedModel())
}

func TestBridgeForwardsInOrder(t *testing.T) {
	b := NewBridge()
	var got []tea.Msg
	b.SetSender(func(m tea.Msg) { got = append(got, m) })
	b.SetViewportWidth(120)
	b.SetSelectedModel("qwen2.5:14b")

	msgs := []models.Message{models.UserMessage("hi")}
	b.ShowMessages(msgs)
	msgs[0].Content = "changed"
	b.ShowTyping()
	b.HideTyping()
	b.Notify(session.Notice{Level: session.NoticeInfo, Text: "x"})

	assert.Equal(t, 120, b.ViewportWidth())
	assert.Equal(t, "qwen2.5:14b", b.SelectedModel())
	assert.Equal(t, []tea.Msg{
		showMessagesMsg{messages: []models.Message{models.UserMessage("hi")}},
		typingMsg{on: true},
		typingMsg{on: false},
		noticeMsg{notice: session.Notice{Level: session.NoticeInfo, Text: "x"}},
	}, got)
}
