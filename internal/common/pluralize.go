// Package common: pluralize.go склоняет русские существительные после числительных
// и форматирует числа для сообщений бота.
package common

import (
	"fmt"
	"strings"
)

// Pluralize выбирает форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 и n%100!=11 → one ("предмет")
//   - n%10 в [2,3,4] и n%100 не в [12,13,14] → few ("предмета")
//   - остальные случаи → many ("предметов")
func Pluralize(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeDays: 1 день, 2 дня, 5 дней.
func PluralizeDays(n int) string {
	return Pluralize(int64(n), "день", "дня", "дней")
}

// PluralizeItems: 1 предмет, 3 предмета, 11 предметов.
func PluralizeItems(n int64) string {
	return Pluralize(n, "предмет", "предмета", "предметов")
}

// PluralizePoints: 1 очко, 2 очка, 5 очков.
func PluralizePoints(n int64) string {
	return Pluralize(n, "очко", "очка", "очков")
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}

// FormatDecimal форматирует дробное число с одним-двумя знаками и запятой.
// Пример: FormatDecimal(1.2782, 2) → "1,28"
func FormatDecimal(v float64, precision int) string {
	s := fmt.Sprintf("%.*f", precision, v)
	return strings.Replace(s, ".", ",", 1)
}
