// Package badges выдаёт достижения за накопленную статистику.
// criteria.go: закрытый набор условий. Каждый вид условия, отдельный тип,
// добавить новый вид можно только в этом пакете.
package badges

import "fmt"

// Stats: накопленная статистика пользователя после применения записи.
type Stats struct {
	TotalLogs     int64   // сколько всего записей
	TotalItems    int64   // сколько всего предметов
	StreakCurrent int     // текущая серия
	CarbonSaved   float64 // всего CO₂, кг
}

// Kind: код вида условия, как он хранится в badges.criteria_kind.
type Kind string

const (
	KindTotalLogs   Kind = "total_logs"
	KindStreak      Kind = "streak"
	KindTotalItems  Kind = "total_items"
	KindCarbonSaved Kind = "carbon_saved"
)

// Criterion: условие получения значка.
type Criterion interface {
	Kind() Kind
	Threshold() float64
	Met(s Stats) bool
	// sealed не даёт реализовать Criterion вне пакета.
	sealed()
}

// TotalLogs: не меньше N записей.
type TotalLogs struct{ N int64 }

// Streak: серия не меньше N дней.
type Streak struct{ Days int }

// TotalItems: не меньше N предметов всего.
type TotalItems struct{ N int64 }

// CarbonSaved: сэкономлено не меньше Kg кг CO₂.
type CarbonSaved struct{ Kg float64 }

func (c TotalLogs) Kind() Kind         { return KindTotalLogs }
func (c TotalLogs) Threshold() float64 { return float64(c.N) }
func (c TotalLogs) Met(s Stats) bool   { return s.TotalLogs >= c.N }
func (TotalLogs) sealed()              {}

func (c Streak) Kind() Kind         { return KindStreak }
func (c Streak) Threshold() float64 { return float64(c.Days) }
func (c Streak) Met(s Stats) bool   { return s.StreakCurrent >= c.Days }
func (Streak) sealed()              {}

func (c TotalItems) Kind() Kind         { return KindTotalItems }
func (c TotalItems) Threshold() float64 { return float64(c.N) }
func (c TotalItems) Met(s Stats) bool   { return s.TotalItems >= c.N }
func (TotalItems) sealed()              {}

func (c CarbonSaved) Kind() Kind         { return KindCarbonSaved }
func (c CarbonSaved) Threshold() float64 { return c.Kg }
func (c CarbonSaved) Met(s Stats) bool   { return s.CarbonSaved >= c.Kg }
func (CarbonSaved) sealed()              {}

// ParseCriterion собирает условие из строки БД.
// Неизвестный вид условия: ошибка.
func ParseCriterion(kind string, threshold float64) (Criterion, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("отрицательный порог %v для %q", threshold, kind)
	}
	switch Kind(kind) {
	case KindTotalLogs:
		return TotalLogs{N: int64(threshold)}, nil
	case KindStreak:
		return Streak{Days: int(threshold)}, nil
	case KindTotalItems:
		return TotalItems{N: int64(threshold)}, nil
	case KindCarbonSaved:
		return CarbonSaved{Kg: threshold}, nil
	default:
		return nil, fmt.Errorf("неизвестный вид условия значка %q", kind)
	}
}
