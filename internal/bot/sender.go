package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

// Sender отправляет сообщения через Telegram Bot API.
// Реализует common.Messenger для обработчиков и напоминаний.
type Sender struct {
	api *telego.Bot
}

// NewSender создаёт отправителя.
func NewSender(api *telego.Bot) *Sender {
	return &Sender{api: api}
}

// SendText отправляет текстовое сообщение в чат.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if _, err := s.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("ошибка отправки в чат %d: %w", chatID, err)
	}
	log.WithField("chat_id", chatID).Debug("message sent")
	return nil
}
