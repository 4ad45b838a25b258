package streak

import (
	"time"

	"serotonyl.ru/ecobot/internal/common"
)

// Advance применяет к серии одну новую запись, сделанную в день today.
//
//   - последняя запись сегодня → серия не меняется;
//   - последняя запись вчера → серия +1;
//   - иначе (пропуск, первая запись, дата «из будущего») → серия = 1.
//
// Затем Best = max(Best, Current), LastLogDate = today.
// Количество предметов в записи на серию не влияет.
func Advance(s State, today time.Time) (State, Transition) {
	tr := Reset
	switch {
	case s.LastLogDate != nil && common.SameDate(*s.LastLogDate, today):
		tr = Kept
	case s.LastLogDate != nil && common.SameDate(s.LastLogDate.AddDate(0, 0, 1), today):
		tr = Extended
		s.Current++
	default:
		s.Current = 1
	}

	if s.Current > s.Best {
		s.Best = s.Current
	}
	d := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	s.LastLogDate = &d
	return s, tr
}

// Alive сообщает, продолжится ли серия, если сдать что-нибудь сегодня.
// Хранимое Current не сбрасывается по таймеру, поэтому для показа нужна эта проверка.
func (s State) Alive(today time.Time) bool {
	if s.LastLogDate == nil || s.Current == 0 {
		return false
	}
	return common.SameDate(*s.LastLogDate, today) ||
		common.SameDate(s.LastLogDate.AddDate(0, 0, 1), today)
}

// LoggedOn сообщает, была ли запись в день today.
func (s State) LoggedOn(today time.Time) bool {
	return s.LastLogDate != nil && common.SameDate(*s.LastLogDate, today)
}

// Display возвращает серию для показа: 0, если она уже прервалась.
func (s State) Display(today time.Time) int {
	if !s.Alive(today) {
		return 0
	}
	return s.Current
}
