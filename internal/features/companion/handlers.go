// Package companion: handlers.go обрабатывает команды !зверьки и !выбрать.
package companion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Handler обрабатывает команды компаньонов.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик компаньонов.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleList показывает каталог компаньонов.
func (h *Handler) HandleList(ctx context.Context, chatID, userID int64) {
	items, err := h.service.List(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения каталога")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("🐾 Компаньоны\n\n")
	for _, it := range items {
		mark := "🔓"
		switch {
		case it.Selected:
			mark = "⭐"
		case it.Owned:
			mark = "✅"
		case it.IsPremium:
			mark = "💎"
		}
		fmt.Fprintf(&sb, "%s %d. %s %s — %s", mark, it.ID, it.Emoji, it.Name, it.ConservationStatus)
		if it.Owned {
			fmt.Fprintf(&sb, " (стадия %d/%d)", it.CurrentStage, MaxStage)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nВыбрать: /pick <номер>")
	h.send(ctx, chatID, sb.String())
}

// HandleSelect обрабатывает !выбрать <номер>.
func (h *Handler) HandleSelect(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.send(ctx, chatID, "Использование: /pick <номер компаньона>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		h.send(ctx, chatID, "❌ Номер компаньона — целое положительное число")
		return
	}

	c, err := h.service.Select(ctx, userID, id)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "companion_id": id}).Info("Компаньон не выбран")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("%s %s теперь с тобой! Очки за сдачу будут растить его.", c.Emoji, c.Name))
}

// FormatEvolution формирует поздравление с новой стадией.
func FormatEvolution(e *Evolution) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("✨ %s %s эволюционировал! Стадия %d: %s", e.Emoji, e.CompanionName, e.NewStage, e.StageName)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
