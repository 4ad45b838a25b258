// Package leaderboard: handlers.go обрабатывает команду !топ.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// сколько строк топа показываем в чате
const chatTopSize = 10

// Handler показывает рейтинг в чате.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик рейтинга.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleTop выводит топ недели и место пользователя.
func (h *Handler) HandleTop(ctx context.Context, chatID, userID int64) {
	board, err := h.service.GetLeaderboard(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения рейтинга")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, FormatBoard(board, userID))
}

// FormatBoard формирует текст рейтинга.
func FormatBoard(board *Board, userID int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Рейтинг недели (с %s)\n\n", common.FormatDate(board.WeekStart))

	if len(board.Entries) == 0 {
		sb.WriteString("Пока никто ничего не сдал. Будьте первым: /log")
		return sb.String()
	}

	for _, e := range Top(board.Entries, chatTopSize) {
		medal := fmt.Sprintf("%d.", e.Rank)
		switch e.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		me := ""
		if e.UserID == userID {
			me = " ← вы"
		}
		fmt.Fprintf(&sb, "%s %s — %s кг CO₂, %d %s%s\n",
			medal, e.DisplayName, common.FormatDecimal(e.CarbonSaved, 2),
			e.Items, common.PluralizeItems(e.Items), me)
	}

	sb.WriteString("\n")
	if board.CallerRank == nil {
		sb.WriteString("Вас нет в рейтинге этой недели — сдайте что-нибудь!")
	} else {
		fmt.Fprintf(&sb, "Ваше место: %d", *board.CallerRank)
	}
	return sb.String()
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
