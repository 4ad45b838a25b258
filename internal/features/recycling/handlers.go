// Package recycling: handlers.go обрабатывает команды !сдать, !журнал, !отменить и !материалы.
package recycling

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
)

// Handler обрабатывает команды журнала.
type Handler struct {
	service *Service
	out     common.Messenger
	loc     *time.Location
}

// NewHandler создаёт обработчик журнала.
func NewHandler(service *Service, out common.Messenger, loc *time.Location) *Handler {
	return &Handler{service: service, out: out, loc: loc}
}

// HandleLog обрабатывает /log <материал> <количество>.
func (h *Handler) HandleLog(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 2 {
		h.send(ctx, chatID, "Использование: /log <материал> <количество>\nНапример: /log стекло 3\nСписок материалов: /materials")
		return
	}

	material, err := impact.ParseMaterialInput(args[0])
	if err != nil {
		h.send(ctx, chatID, "❌ "+common.UserMessage(err)+"\nСписок материалов: /materials")
		return
	}
	count, err := impact.ParseQuantity(args[1])
	if err != nil {
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}

	res, err := h.service.Submit(ctx, userID, material, count)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка записи сдачи")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, FormatSubmit(res))
}

// FormatSubmit формирует ответ на запись о сдаче.
func FormatSubmit(res *SubmitResult) string {
	e := res.Event
	var sb strings.Builder
	fmt.Fprintf(&sb, "♻️ Записано #%d: %s %d %s (%s)\n",
		e.ID, profileEmoji(e.Material), e.ItemCount, common.PluralizeItems(int64(e.ItemCount)), e.Material.Title())
	fmt.Fprintf(&sb, "🌍 CO₂: −%s кг, 💧 вода: −%s л\n",
		common.FormatDecimal(e.CarbonSaved, 2), common.FormatDecimal(e.WaterSaved, 1))
	fmt.Fprintf(&sb, "🔥 Огонёк: %d %s\n", res.StreakCurrent, common.PluralizeDays(res.StreakCurrent))
	fmt.Fprintf(&sb, "⭐ +%d %s компаньону\n", res.PointsEarned, common.PluralizePoints(res.PointsEarned))

	if evo := companion.FormatEvolution(res.Evolution); evo != "" {
		sb.WriteString("\n" + evo + "\n")
	}
	if nb := badges.FormatNew(res.NewBadges); nb != "" {
		sb.WriteString("\n" + nb)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleHistory обрабатывает /history [страница].
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64, args []string) {
	page := 1
	if len(args) > 0 {
		p, err := ParsePage(args[0])
		if err != nil {
			h.send(ctx, chatID, "❌ "+common.UserMessage(err))
			return
		}
		page = p
	}

	res, err := h.service.List(ctx, userID, page, 10)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка чтения журнала")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	if res.Total == 0 {
		h.send(ctx, chatID, "📭 Журнал пуст. Начните с /log стекло 1")
		return
	}
	if len(res.Events) == 0 {
		h.send(ctx, chatID, fmt.Sprintf("Страницы %d нет, всего страниц: %d", res.Page, res.Pages))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📒 Журнал (стр. %d/%d, всего %d)\n\n", res.Page, res.Pages, res.Total)
	for _, e := range res.Events {
		fmt.Fprintf(&sb, "#%d %s %s %d %s, CO₂ −%s кг\n",
			e.ID, common.FormatDateTime(e.LoggedAt, h.loc), profileEmoji(e.Material),
			e.ItemCount, common.PluralizeItems(int64(e.ItemCount)), common.FormatDecimal(e.CarbonSaved, 2))
	}
	if res.Page < res.Pages {
		fmt.Fprintf(&sb, "\nДальше: /history %d", res.Page+1)
	}
	sb.WriteString("\nУдалить запись: /undo <номер>")
	h.send(ctx, chatID, sb.String())
}

// HandleUndo обрабатывает /undo <номер записи>.
func (h *Handler) HandleUndo(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.send(ctx, chatID, "Использование: /undo <номер записи>\nНомера есть в /history")
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		h.send(ctx, chatID, "❌ Номер записи — целое положительное число")
		return
	}

	if err := h.service.Remove(ctx, userID, id); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "event_id": id}).Info("Запись не удалена")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("🗑 Запись #%d удалена, итоги пересчитаны.\nОгонёк, значки и компаньон остаются при вас.", id))
}

// HandleMaterials выводит список материалов и их коэффициенты.
func (h *Handler) HandleMaterials(ctx context.Context, chatID int64) {
	h.send(ctx, chatID, FormatMaterials())
}

// FormatMaterials формирует справку по материалам.
func FormatMaterials() string {
	var sb strings.Builder
	sb.WriteString("♻️ Материалы\n\n")
	for _, m := range impact.Materials() {
		p, _ := m.Profile()
		fmt.Fprintf(&sb, "%s %s (%s) — %s кг CO₂ за штуку, %d %s за штуку\n",
			p.Emoji, p.Title, m,
			common.FormatDecimal(p.WeightKg*p.CarbonPerKg, 3),
			companion.PointsFor(m, 1), common.PluralizePoints(companion.PointsFor(m, 1)))
	}
	sb.WriteString("\nЗаписать: /log <материал> <количество>")
	return sb.String()
}

func profileEmoji(m impact.Material) string {
	if p, ok := m.Profile(); ok {
		return p.Emoji
	}
	return "♻️"
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
