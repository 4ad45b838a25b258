// Package admin реализует админ-панель с парольной аутентификацией.
// Через неё вручную выдаются компаньоны и Planet Pass: то же, что делает платёжный сервис.
// models.go описывает структуры сессий и попыток входа.
package admin

import "time"

// AdminSession: активная сессия администратора.
type AdminSession struct {
	ID              int64
	UserID          int64
	SessionToken    string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
	LastActivity    time.Time
	IsActive        bool
}

// AdminState: состояние диалога с админом.
type AdminState struct {
	State     string
	ExpiresAt time.Time // состояние живёт 5 минут
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
)

// Ограничения входа
const (
	MaxFailedAttempts = 3
	AttemptsWindow    = time.Hour
	SessionTTL        = 24 * time.Hour
	StateTTL          = 5 * time.Minute
)
