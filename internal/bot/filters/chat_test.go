package filters

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

func message(chatType string, from *telego.User) *telego.Message {
	return &telego.Message{
		Chat: telego.Chat{ID: 100, Type: chatType},
		From: from,
		Text: "/stats",
	}
}

func TestCheckAccess(t *testing.T) {
	user := &telego.User{ID: 7, FirstName: "Аня"}
	bot := &telego.User{ID: 8, IsBot: true}

	f := NewChatFilter(false)
	assert.True(t, f.CheckAccess(message(telego.ChatTypePrivate, user)))
	assert.False(t, f.CheckAccess(message(telego.ChatTypeGroup, user)))
	assert.False(t, f.CheckAccess(message(telego.ChatTypeChannel, user)))
	assert.False(t, f.CheckAccess(message(telego.ChatTypePrivate, nil)))
	assert.False(t, f.CheckAccess(message(telego.ChatTypePrivate, bot)))
	assert.False(t, f.CheckAccess(nil))

	groups := NewChatFilter(true)
	assert.True(t, groups.CheckAccess(message(telego.ChatTypeSupergroup, user)))
}

func TestIsPrivate(t *testing.T) {
	assert.True(t, IsPrivate(message(telego.ChatTypePrivate, nil)))
	assert.False(t, IsPrivate(message(telego.ChatTypeGroup, nil)))
	assert.False(t, IsPrivate(nil))
}
