// Package badges: handlers.go обрабатывает команду !значки.
package badges

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Handler показывает значки в чате.
type Handler struct {
	service *Service
	out     common.Messenger
	loc     *time.Location
}

// NewHandler создаёт обработчик значков.
func NewHandler(service *Service, out common.Messenger, loc *time.Location) *Handler {
	return &Handler{service: service, out: out, loc: loc}
}

// HandleBadges выводит полученные значки и то, что осталось открыть.
func (h *Handler) HandleBadges(ctx context.Context, chatID, userID int64) {
	views, err := h.service.GetBadges(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения значков")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏅 Значки: %d из %d\n\n", CountEarned(views), len(views))
	for _, v := range views {
		if v.Earned {
			fmt.Fprintf(&sb, "%s %s — получен %s\n", v.Emoji, v.Name, common.FormatDateTime(*v.EarnedAt, h.loc))
			continue
		}
		fmt.Fprintf(&sb, "🔒 %s — %s\n", v.Name, Requirement(v.Criterion))
	}
	h.send(ctx, chatID, sb.String())
}

// FormatNew формирует поздравление с новыми значками (пустая строка, если их нет).
func FormatNew(earned []Badge) string {
	if len(earned) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("🎉 Новые значки:\n")
	for _, b := range earned {
		fmt.Fprintf(&sb, "%s %s\n", b.Emoji, b.Name)
	}
	return sb.String()
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
