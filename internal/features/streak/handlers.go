// Package streak: handlers.go обрабатывает команду !огонек.
// Показывает текущую серию, рекорд и сдавал ли пользователь что-то сегодня.
package streak

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Handler обрабатывает команды серии.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт новый обработчик команд серии.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleStreak обрабатывает !огонек.
//
// Формат ответа:
//
//	🔥 Твой огонёк
//	Текущая серия: 8 дней
//	Лучшая серия: 12 дней
//	✅ Сегодня уже сдавал(а)   |   ⏳ Сегодня ещё ничего не сдано
func (h *Handler) HandleStreak(ctx context.Context, chatID, userID int64) {
	st, err := h.service.GetStreak(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения серии")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}

	today := h.service.Today()
	current := st.Display(today)

	status := "⏳ Сегодня ещё ничего не сдано"
	switch {
	case st.LoggedOn(today):
		status = "✅ Сегодня уже сдавал(а), огонёк горит"
	case current == 0 && st.Best > 0:
		status = "💨 Серия прервалась. Сдай что-нибудь, чтобы начать заново"
	}

	text := fmt.Sprintf(
		"🔥 Твой огонёк\n\n"+
			"Текущая серия: %d %s\n"+
			"Лучшая серия: %d %s\n\n"+
			"%s",
		current, common.PluralizeDays(current),
		st.Best, common.PluralizeDays(st.Best),
		status,
	)
	h.send(ctx, chatID, text)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
