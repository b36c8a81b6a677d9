package chat

import (
	"testing"

	"ragchat/src/components/theme"
	"ragchat/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeByDefault(t *testing.T) {
	m := New(theme.New("dark"))
	m.SetSize(100, 30)

	assert.True(t, m.Welcome())
	assert.Contains(t, m.View(), WelcomeText)
}

func TestMessagesReplaceWelcome(t *testing.T) {
	m := New(theme.New("dark"))
	m.SetSize(80, 40)

	m.SetMessages([]models.Message{models.UserMessage("ping"), models.AssistantMessage("pong", "llama")})

	assert.False(t, m.Welcome())
	out := m.View()
	assert.Contains(t, out, "ping")
	assert.Contains(t, out, "pong")
	assert.Contains(t, out, "(llama)")
}

func TestAppendAndLastAnswer(t *testing.T) {
	m := New(theme.New("light"))
	_, ok := m.LastAnswer()
	assert.False(t, ok)

	m.Append(models.UserMessage("q"))
	m.Append(models.AssistantMessage("first", ""))
	m.Append(models.UserMessage("q2"))

	answer, ok := m.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "first", answer)
	assert.Len(t, m.Messages(), 3)
}

func TestTypingIndicator(t *testing.T) {
	m := New(theme.New("dark"))
	m.SetSize(80, 20)
	m.Clear()

	cmd := m.SetTyping(true)
	assert.NotNil(t, cmd)
	assert.True(t, m.Typing())
	assert.Contains(t, m.View(), "thinking")

	assert.Nil(t, m.SetTyping(false))
	assert.NotContains(t, m.View(), "thinking")
}

func TestClearAndWelcome(t *testing.T) {
	m := New(theme.New("dark"))
	m.Append(models.UserMessage("x"))

	m.Clear()
	assert.Empty(t, m.Messages())
	assert.False(t, m.Welcome())

	m.Append(models.UserMessage("y"))
	m.ShowWelcome()
	assert.Empty(t, m.Messages())
	assert.True(t, m.Welcome())
}

func TestSpinnerTickReusesRenderedHistory(t *testing.T) {
	m := New(theme.New("dark"))
	m.SetSize(80, 20)
	calls := 0
	m.markdown = func(s string) (string, error) {
		calls++
		return s, nil
	}

	answers := make([]models.Message, 0, 50)
	for i := 0; i < 50; i++ {
		answers = append(answers, models.AssistantMessage("**answer**", ""))
	}
	m.SetMessages(answers)
	require.Equal(t, 50, calls)

	m.Append(models.UserMessage("next"))
	require.NotNil(t, m.SetTyping(true))
	for i := 0; i < 10; i++ {
		m.Update(m.spinner.Tick())
	}

	assert.Equal(t, 50, calls)
	assert.Contains(t, m.View(), "thinking")

	m.Append(models.AssistantMessage("done", ""))
	assert.Equal(t, 51, calls)
}
