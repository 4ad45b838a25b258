// Package members управляет участниками: регистрацией по Telegram-профилю,
// отображаемым именем и флагами.
// models.go описывает структуры данных для работы с таблицей members.
package members

import "time"

// Member: участник в базе. Запись создаётся при первом обращении к боту или API.
type Member struct {
	UserID    int64     `json:"user_id"`      // Telegram user ID
	Username  string    `json:"username"`     // @username (может быть пустым)
	FirstName string    `json:"first_name"`   // Имя из Telegram
	LastName  string    `json:"last_name"`    // Фамилия (может быть пустой)
	Nickname  string    `json:"display_name"` // Имя, выбранное пользователем (может быть пустым)
	IsAdmin   bool      `json:"is_admin"`     // Флаг администратора
	IsPremium bool      `json:"is_premium"`   // Planet Pass
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity: данные профиля Telegram, которые приходят с каждым апдейтом.
type Identity struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя пользователя.
// Выбранное имя важнее Telegram-профиля; затем имя + фамилия, затем @username.
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	if m.FirstName != "" {
		name := m.FirstName
		if m.LastName != "" {
			name += " " + m.LastName
		}
		return name
	}
	if m.Username != "" {
		return "@" + m.Username
	}
	return "Эко-герой"
}
