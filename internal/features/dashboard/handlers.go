// Package dashboard: handlers.go обрабатывает команду !стата.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/companion"
)

// Handler показывает сводку в чате.
type Handler struct {
	service *Service
	out     common.Messenger
	loc     *time.Location
}

// NewHandler создаёт обработчик сводки.
func NewHandler(service *Service, out common.Messenger, loc *time.Location) *Handler {
	return &Handler{service: service, out: out, loc: loc}
}

// HandleStats выводит сводку пользователя.
func (h *Handler) HandleStats(ctx context.Context, chatID, userID int64) {
	s, err := h.service.GetSummary(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения сводки")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, FormatSummary(s, h.loc))
}

// FormatSummary формирует текст сводки.
func FormatSummary(s *Summary, loc *time.Location) string {
	var sb strings.Builder
	premium := ""
	if s.IsPremium {
		premium = " 💎"
	}
	fmt.Fprintf(&sb, "📊 %s%s\n\n", s.DisplayName, premium)

	fmt.Fprintf(&sb, "🌍 CO₂ сэкономлено: %s кг\n", common.FormatDecimal(s.TotalCarbonSaved, 2))
	fmt.Fprintf(&sb, "💧 Воды сэкономлено: %s л\n", common.FormatDecimal(s.TotalWaterSaved, 1))
	fmt.Fprintf(&sb, "♻️ Сдано: %s %s за %s %s\n",
		common.FormatNumber(s.TotalItems), common.PluralizeItems(s.TotalItems),
		common.FormatNumber(s.TotalLogs), common.Pluralize(s.TotalLogs, "раз", "раза", "раз"))
	fmt.Fprintf(&sb, "🔥 Огонёк: %d %s (рекорд %d)",
		s.StreakCurrent, common.PluralizeDays(s.StreakCurrent), s.StreakBest)
	if s.StreakCurrent > 0 && !s.StreakAlive {
		sb.WriteString(", погас")
	}
	sb.WriteString("\n\n")

	eq := s.Equivalents
	sb.WriteString("Это как:\n")
	fmt.Fprintf(&sb, "🌳 %s дерева за год\n", common.FormatDecimal(eq.Trees, 1))
	fmt.Fprintf(&sb, "🚗 %s км на машине\n", common.FormatDecimal(eq.KmDriven, 1))
	fmt.Fprintf(&sb, "🛁 %s ванны воды\n", common.FormatDecimal(eq.Bathtubs, 1))
	fmt.Fprintf(&sb, "⛽ %s полбака бензина\n", common.FormatDecimal(eq.HalfTanks, 1))

	sb.WriteString("\n")
	sb.WriteString(formatCompanion(s.Companion, s.CompanionPoints))

	if len(s.RecentEvents) > 0 {
		sb.WriteString("\n\nПоследние записи:\n")
		for _, e := range s.RecentEvents {
			fmt.Fprintf(&sb, "#%d %s — %s × %d\n",
				e.ID, common.FormatDateTime(e.LoggedAt, loc), e.Material.Title(), e.ItemCount)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCompanion(p *companion.Progress, points int64) string {
	if p == nil {
		return fmt.Sprintf("🐾 Компаньон не выбран (накоплено %s %s). Выбрать: /companions",
			common.FormatNumber(points), common.PluralizePoints(points))
	}
	line := fmt.Sprintf("%s %s — стадия %d/%d «%s», %s %s",
		p.Companion.Emoji, p.Companion.Name, p.CurrentStage, companion.MaxStage, p.StageName,
		common.FormatNumber(p.Points), common.PluralizePoints(p.Points))
	if p.IsMaxStage || p.NextStagePoints == nil {
		return line + "\n🏆 Максимальная стадия!"
	}
	left := *p.NextStagePoints - p.Points
	if left < 0 {
		left = 0
	}
	return line + fmt.Sprintf("\nДо «%s»: %s %s", p.NextStageName, common.FormatNumber(left), common.PluralizePoints(left))
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
