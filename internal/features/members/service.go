// Package members: service.go содержит бизнес-логику управления участниками.
// Сервис регистрирует пользователей при первом обращении и меняет отображаемое имя.
package members

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Пределы длины отображаемого имени (в символах).
const (
	MinNameLength = 2
	MaxNameLength = 50
)

// Store: операции хранилища участников.
type Store interface {
	Upsert(ctx context.Context, id Identity) error
	Ensure(ctx context.Context, userID int64) (bool, error)
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	SetDisplayName(ctx context.Context, userID int64, name string) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Service управляет участниками.
type Service struct {
	repo Store
}

// NewService создаёт новый сервис участников.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// EnsureMember регистрирует пользователя по профилю Telegram или обновляет имя/username.
// Вызывается на каждый апдейт бота.
func (s *Service) EnsureMember(ctx context.Context, id Identity) error {
	if err := s.repo.Upsert(ctx, id); err != nil {
		return common.StorageError("ensure member", err)
	}
	return nil
}

// EnsureUser гарантирует, что запись участника есть. Для HTTP, где профиля Telegram нет.
func (s *Service) EnsureUser(ctx context.Context, userID int64) error {
	created, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return common.StorageError("ensure user", err)
	}
	if created {
		log.WithField("user_id", userID).Info("Новый участник зарегистрирован через API")
	}
	return nil
}

// GetByUserID возвращает участника по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, common.StorageError("get member", err)
	}
	return m, nil
}

// IsAdmin проверяет флаг администратора в базе.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

// UpdateDisplayName проверяет и сохраняет отображаемое имя.
// Возвращает имя в том виде, в каком оно сохранено.
func (s *Service) UpdateDisplayName(ctx context.Context, userID int64, name string) (string, error) {
	name, err := ValidateDisplayName(name)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetDisplayName(ctx, userID, name); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", err
		}
		return "", common.StorageError("set display name", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "display_name": name}).Info("Имя изменено")
	return name, nil
}

// ValidateDisplayName обрезает пробелы по краям, схлопывает повторные
// и проверяет имя: 2–50 символов, только буквы, цифры и пробелы.
func ValidateDisplayName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")

	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return "", common.NewValidationError("display_name", common.ErrInvalidDisplayName,
			"Имя должно быть от 2 до 50 символов")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return "", common.NewValidationError("display_name", common.ErrInvalidDisplayName,
				"Имя может содержать только буквы, цифры и пробелы")
		}
	}
	return name, nil
}
