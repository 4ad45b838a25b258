// Package common: errors.go определяет ошибки, общие для всех модулей.
// По ним обработчики (бот и HTTP) решают, что показать пользователю,
// а что только записать в лог.
package common

import (
	"errors"
	"fmt"
)

// Классы ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому транспорту достаточно errors.Is(err, ErrNotFound) и т.п.
var (
	// ErrValidation: некорректный ввод, отклонён до любых изменений
	ErrValidation = errors.New("некорректные данные")
	// ErrNotFound: объект не существует или не принадлежит пользователю
	ErrNotFound = errors.New("не найдено")
	// ErrForbidden: действие требует владения, которого нет
	ErrForbidden = errors.New("недоступно")
	// ErrStorage: сбой БД, транзакция откатилась
	ErrStorage = errors.New("ошибка хранилища")
)

// Ошибки ввода
var (
	ErrInvalidMaterial    = errors.New("неизвестный материал")
	ErrInvalidQuantity    = errors.New("некорректное количество")
	ErrInvalidDisplayName = errors.New("некорректное имя")
	ErrInvalidPage        = errors.New("некорректная страница")
)

// Ошибки поиска и доступа
var (
	ErrEventNotFound     = fmt.Errorf("запись о сдаче не найдена: %w", ErrNotFound)
	ErrCompanionNotFound = fmt.Errorf("компаньон не найден: %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("пользователь не найден: %w", ErrNotFound)
	ErrCompanionLocked   = fmt.Errorf("компаньон открывается только после покупки: %w", ErrForbidden)
)

// Ошибки админки
var (
	// ErrNotAdmin: пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword: неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts: слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired: сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// ValidationError: отказ по вводу с понятным пользователю текстом.
// errors.Is срабатывает и на ErrValidation, и на конкретную причину (Err).
type ValidationError struct {
	Field   string // какое поле не прошло проверку
	Message string // что показать пользователю
	Err     error  // конкретная причина, например ErrInvalidMaterial
}

// NewValidationError создаёт ошибку валидации.
func NewValidationError(field string, cause error, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: cause}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// StorageError оборачивает ошибку БД в ErrStorage, сохраняя первопричину для логов.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}

// UserMessage возвращает текст ошибки, который можно показать пользователю.
// Для сбоев хранилища и неизвестных ошибок текст общий, без подробностей.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrEventNotFound):
		return "Такой записи нет (или она не ваша)"
	case errors.Is(err, ErrCompanionNotFound):
		return "Такого компаньона нет"
	case errors.Is(err, ErrCompanionLocked):
		return "Этот компаньон открывается только после покупки"
	case errors.Is(err, ErrNotFound):
		return "Не найдено"
	default:
		return "Что-то пошло не так, попробуйте позже"
	}
}
