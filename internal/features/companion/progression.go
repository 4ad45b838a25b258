package companion

import "serotonyl.ru/ecobot/internal/features/impact"

// MaxStage: последняя стадия эволюции.
const MaxStage = 5

// DefaultPointRate: очки за предмет для материала без своей ставки.
const DefaultPointRate = 3

// pointRates: очки компаньона за один предмет.
var pointRates = map[impact.Material]int64{
	impact.Plastic:   5,
	impact.Glass:     5,
	impact.Paper:     3,
	impact.Aluminum:  7,
	impact.Steel:     7,
	impact.Cardboard: 3,
}

// PointsFor возвращает очки за count предметов материала m.
func PointsFor(m impact.Material, count int) int64 {
	rate, ok := pointRates[m]
	if !ok {
		rate = DefaultPointRate
	}
	return rate * int64(count)
}

// NextStage решает, переходит ли компаньон на следующую стадию.
//
// Переход возможен только на current+1 и только если next описывает именно её
// и points >= next.PointsRequired. За одну запись: не больше одного перехода,
// даже если очков хватает на несколько стадий. На MaxStage переходов нет.
func NextStage(current int, points int64, next *Stage) (int, bool) {
	if current >= MaxStage || next == nil || next.Number != current+1 {
		return current, false
	}
	if points < next.PointsRequired {
		return current, false
	}
	return current + 1, true
}
