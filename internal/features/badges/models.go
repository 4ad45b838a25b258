package badges

import (
	"fmt"
	"time"

	"serotonyl.ru/ecobot/internal/common"
)

// Badge: значок из справочника badges. Справочник только читается.
type Badge struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Emoji       string
	Criterion   Criterion
}

// View: значок с отметкой, получен ли он пользователем.
type View struct {
	Badge
	Earned   bool
	EarnedAt *time.Time
}

// Requirement описывает условие значка человеческим языком.
func Requirement(c Criterion) string {
	switch c := c.(type) {
	case TotalLogs:
		return fmt.Sprintf("сдать вторсырьё %d раз", c.N)
	case Streak:
		return fmt.Sprintf("огонёк %d %s подряд", c.Days, common.PluralizeDays(c.Days))
	case TotalItems:
		return fmt.Sprintf("сдать %d %s", c.N, common.PluralizeItems(c.N))
	case CarbonSaved:
		return fmt.Sprintf("сэкономить %s кг CO₂", common.FormatDecimal(c.Kg, 1))
	default:
		return "особое условие"
	}
}
