// Package recycling ведёт журнал сдачи вторсырья и сводку пользователя.
// Здесь собраны две составные операции, которые выполняются одной транзакцией:
// запись о сдаче (событие + огонёк + очки компаньона + значки) и её удаление.
package recycling

import (
	"time"

	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/streak"
)

// Event: запись о сдаче. После создания не меняется.
type Event struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Material    impact.Material `json:"material"`
	ItemCount   int             `json:"item_count"`
	CarbonSaved float64         `json:"carbon_saved"`
	WaterSaved  float64         `json:"water_saved"`
	LoggedAt    time.Time       `json:"logged_at"`
}

// Progress: сводка пользователя (строка user_progress).
type Progress struct {
	UserID              int64
	TotalCarbonSaved    float64
	TotalWaterSaved     float64
	Streak              streak.State
	SelectedCompanionID *int64
	CompanionPoints     int64
}

// Counts: число записей и сданных предметов пользователя.
type Counts struct {
	Logs  int64
	Items int64
}

// SubmitResult: итог записи о сдаче.
type SubmitResult struct {
	Event         Event                `json:"event"`
	NewBadges     []badges.Badge       `json:"new_badges"`
	StreakCurrent int                  `json:"streak_current"`
	StreakChange  streak.Transition    `json:"-"`
	PointsEarned  int64                `json:"points_earned"`
	Evolution     *companion.Evolution `json:"evolution"`
}

// EventPage: страница журнала, новые записи первыми.
type EventPage struct {
	Events []Event `json:"events"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

// Параметры постраничного вывода.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)
