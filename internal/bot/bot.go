// Package bot содержит Telegram-транспорт: long polling, фильтры, разбор и маршрутизацию команд.
// Вся бизнес-логика живёт в сервисах features, бот только переводит апдейты в вызовы обработчиков.
package bot

import (
	"context"
	"sync"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/bot/filters"
	"serotonyl.ru/ecobot/internal/bot/middleware"
	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/config"
	"serotonyl.ru/ecobot/internal/features/admin"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/dashboard"
	"serotonyl.ru/ecobot/internal/features/leaderboard"
	"serotonyl.ru/ecobot/internal/features/members"
	"serotonyl.ru/ecobot/internal/features/recycling"
	"serotonyl.ru/ecobot/internal/features/streak"
)

const helpText = `♻️ Эко-бот: записывайте сданное вторсырьё и растите своего компаньона.

/log <материал> <кол-во> — записать сдачу (например: /log пластик 3)
/history [страница] — история сдачи
/undo <id> — удалить ошибочную запись
/stats — ваша статистика
/streak — серия дней подряд
/top — рейтинг недели
/badges — значки
/companions — компаньоны
/pick <id> — выбрать компаньона
/name <имя> — имя в рейтинге
/materials — что можно сдавать`

// MemberEnsurer регистрирует автора апдейта.
type MemberEnsurer interface {
	EnsureMember(ctx context.Context, id members.Identity) error
}

// Handlers: обработчики команд по фичам.
type Handlers struct {
	Recycling   *recycling.Handler
	Dashboard   *dashboard.Handler
	Leaderboard *leaderboard.Handler
	Badges      *badges.Handler
	Companion   *companion.Handler
	Members     *members.Handler
	Streak      *streak.Handler
	Admin       *admin.Handler
}

// Bot: главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	out common.Messenger
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	members  MemberEnsurer
	handlers Handlers

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(api *telego.Bot, out common.Messenger, cfg *config.Config, memberService MemberEnsurer, handlers Handlers) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		out:         out,
		cfg:         cfg,
		chatFilter:  filters.NewChatFilter(false),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		parser:      NewCommandParser(),
		members:     memberService,
		handlers:    handlers,
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает long polling и блокируется до отмены ctx.
// Перед возвратом дожидается обработки уже полученных апдейтов.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	defer func() {
		b.wg.Wait()
		b.rateLimiter.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			b.wg.Add(1)
			go func(upd telego.Update) {
				defer b.wg.Done()
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	message := update.Message
	if message == nil || message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}

	userID := message.From.ID
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	// EnsureMember: ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.members.EnsureMember(ctx, members.Identity{
		UserID:    userID,
		Username:  message.From.Username,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	b.dispatch(ctx, message.Chat.ID, userID, filters.IsPrivate(message), message.Text)
}

// dispatch отдаёт текст админке (только в личке) или маршрутизатору команд.
func (b *Bot) dispatch(ctx context.Context, chatID, userID int64, private bool, text string) {
	if private && b.handlers.Admin != nil {
		if b.handlers.Admin.HandleAdminMessage(ctx, chatID, userID, text) {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(text)
	if !isCommand {
		return
	}
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	b.routeCommand(ctx, chatID, userID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	h := b.handlers
	switch cmd {
	case "start", "help":
		b.send(ctx, chatID, helpText)

	case "log":
		h.Recycling.HandleLog(ctx, chatID, userID, args)
	case "history":
		h.Recycling.HandleHistory(ctx, chatID, userID, args)
	case "undo":
		h.Recycling.HandleUndo(ctx, chatID, userID, args)
	case "materials":
		h.Recycling.HandleMaterials(ctx, chatID)

	case "stats":
		h.Dashboard.HandleStats(ctx, chatID, userID)
	case "streak":
		h.Streak.HandleStreak(ctx, chatID, userID)
	case "top":
		h.Leaderboard.HandleTop(ctx, chatID, userID)
	case "badges":
		h.Badges.HandleBadges(ctx, chatID, userID)

	case "companions":
		h.Companion.HandleList(ctx, chatID, userID)
	case "pick":
		h.Companion.HandleSelect(ctx, chatID, userID, args)

	case "name":
		h.Members.HandleName(ctx, chatID, userID, args)

	default:
		log.WithField("cmd", cmd).Debug("unknown command")
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
