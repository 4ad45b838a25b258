package common

import "context"

// Messenger отправляет текст в чат. Реализуется ботом; обработчики фич
// зависят только от этого интерфейса.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
