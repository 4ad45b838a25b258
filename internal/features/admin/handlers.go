// Package admin: handlers.go обрабатывает админ-команды в личных сообщениях.
// Поток: /admin → пароль → сессия на 24 часа → /grant, /pass, /logout.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

const adminHelp = `🛠 Админ-панель

/grant <user_id> <companion_id> — открыть компаньона
/pass <user_id> — выдать Planet Pass
/logout — выйти из панели`

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleAdminMessage обрабатывает сообщение администратора в DM.
// Возвращает false, если сообщение не относится к админке и его нужно передать дальше.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID, userID int64, text string) bool {
	if !h.service.IsAdmin(ctx, userID) {
		return false
	}

	if state := h.service.GetState(userID); state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "admin", "grant", "pass", "logout":
	default:
		return false
	}

	if !h.service.HasActiveSession(ctx, userID) {
		h.service.SetState(userID, StateAwaitingPassword)
		h.send(ctx, chatID, "🔐 Введите пароль для доступа к админ-панели:")
		return true
	}

	switch cmd {
	case "admin":
		h.send(ctx, chatID, adminHelp)
	case "grant":
		h.handleGrant(ctx, chatID, userID, args)
	case "pass":
		h.handlePass(ctx, chatID, userID, args)
	case "logout":
		if err := h.service.Logout(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка выхода из админки")
			h.send(ctx, chatID, "❌ "+common.UserMessage(err))
			return true
		}
		h.send(ctx, chatID, "👋 Сессия завершена")
	}
	return true
}

func (h *Handler) handlePasswordInput(ctx context.Context, chatID, userID int64, password string) {
	h.service.ClearState(userID)

	err := h.service.VerifyPassword(ctx, userID, strings.TrimSpace(password))
	switch {
	case err == nil:
		h.send(ctx, chatID, "✅ Доступ открыт на 24 часа\n\n"+adminHelp)
	case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrTooManyAttempts):
		h.send(ctx, chatID, "❌ "+err.Error())
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка проверки пароля")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
	}
}

func (h *Handler) handleGrant(ctx context.Context, chatID, adminID int64, args []string) {
	if len(args) != 2 {
		h.send(ctx, chatID, "Использование: /grant <user_id> <companion_id>")
		return
	}
	userID, err1 := strconv.ParseInt(args[0], 10, 64)
	companionID, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil || userID <= 0 || companionID <= 0 {
		h.send(ctx, chatID, "❌ ID должны быть положительными числами")
		return
	}

	created, err := h.service.GrantCompanion(ctx, adminID, userID, companionID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка выдачи компаньона")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	if !created {
		h.send(ctx, chatID, fmt.Sprintf("ℹ️ У пользователя %d уже есть компаньон #%d", userID, companionID))
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("✅ Компаньон #%d открыт пользователю %d", companionID, userID))
}

func (h *Handler) handlePass(ctx context.Context, chatID, adminID int64, args []string) {
	if len(args) != 1 {
		h.send(ctx, chatID, "Использование: /pass <user_id>")
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		h.send(ctx, chatID, "❌ ID должен быть положительным числом")
		return
	}

	n, err := h.service.GrantPass(ctx, adminID, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка выдачи Planet Pass")
		h.send(ctx, chatID, "❌ "+common.UserMessage(err))
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("💎 Planet Pass выдан пользователю %d, открыто компаньонов: %d", userID, n))
}

// splitCommand разбирает "/grant@ecobot 1 2" в ("grant", ["1", "2"]).
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	head := fields[0]
	if head == "" || !strings.ContainsRune("/!.", rune(head[0])) {
		return "", nil
	}
	head = head[1:]
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	return strings.ToLower(head), fields[1:]
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.out.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
