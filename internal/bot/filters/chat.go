// Package filters решает, на какие сообщения бот отвечает.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает только личные сообщения от живых пользователей.
// В группах журнал сдачи и админка не работают.
type ChatFilter struct {
	allowGroups bool
}

// NewChatFilter создаёт фильтр. allowGroups разрешает команды в группах (кроме админки).
func NewChatFilter(allowGroups bool) *ChatFilter {
	return &ChatFilter{allowGroups: allowGroups}
}

// CheckAccess проверяет, нужно ли обрабатывать сообщение.
func (f *ChatFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}
	if message.From.IsBot {
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	switch message.Chat.Type {
	case telego.ChatTypePrivate:
		return true
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		if f.allowGroups {
			return true
		}
		logger.Debug("deny: group chat")
		return false
	default:
		logger.Debug("deny: unsupported chat type")
		return false
	}
}

// IsPrivate: личный чат с ботом.
func IsPrivate(message *telego.Message) bool {
	return message != nil && message.Chat.Type == telego.ChatTypePrivate
}
