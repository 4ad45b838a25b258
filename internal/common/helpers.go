// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с датами.
package common

import (
	"time"
)

// DateIn возвращает календарную дату момента t в часовом поясе loc (полночь этого дня).
//
// Все «дневные» правила (огонёк, окно рейтинга) считают дату по часам сервера
// в APP_TIMEZONE, а не по часовому поясу пользователя.
func DateIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDate сравнивает две даты без учёта времени.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekStart возвращает понедельник 00:00 недели, в которую попадает t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	d := DateIn(t, loc)
	// time.Weekday: воскресенье = 0, нам нужен понедельник как начало недели
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// FormatDateTime форматирует время как "02.01.2006 15:04" в часовом поясе loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// FormatDate форматирует дату как "02.01.2006".
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
