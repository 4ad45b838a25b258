// Package members: handlers.go обрабатывает команду !имя.
package members

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Handler обрабатывает команды профиля.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт новый обработчик профиля.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleName обрабатывает /name <новое имя>. Без аргументов показывает текущее имя.
func (h *Handler) HandleName(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		m, err := h.service.GetByUserID(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка чтения профиля")
			h.send(ctx, chatID, "❌ "+common.UserMessage(err))
			return
		}
		h.send(ctx, chatID, fmt.Sprintf("Вас видят в рейтинге как «%s».\nСменить: /name <новое имя>", m.DisplayName()))
		return
	}

	name, err := h.service.UpdateDisplayName(ctx, userID, strings.Join(args, " "))
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Info("Имя не изменено")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("✅ Теперь вас зовут «%s»", name))
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
