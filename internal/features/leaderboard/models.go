// Package leaderboard строит недельный рейтинг по сэкономленному CO₂.
// Окно: с понедельника 00:00 текущей недели до текущего момента.
package leaderboard

import "time"

// Row: итоги одного пользователя за окно, до присвоения места.
type Row struct {
	UserID      int64   `json:"user_id"`
	DisplayName string  `json:"display_name"`
	CarbonSaved float64 `json:"carbon_saved"`
	Items       int64   `json:"items"`
}

// Entry: строка рейтинга с местом.
type Entry struct {
	Rank int `json:"rank"`
	Row
}

// Board: рейтинг недели и место запросившего пользователя.
// CallerRank есть всегда: кто ничего не сдавал, стоит сразу за всеми участниками.
type Board struct {
	WeekStart  time.Time `json:"week_start"`
	Entries    []Entry   `json:"entries"`
	CallerRank *int      `json:"caller_rank"`
}

// Standing: положение пользователя вне топа.
type Standing struct {
	CarbonSaved float64
	Greater     int64 // сколько участников сэкономили строго больше
}
