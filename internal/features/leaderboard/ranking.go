package leaderboard

import "sort"

// Rank упорядочивает строки и присваивает места 1..N.
//
// Порядок: CO₂ по убыванию, при равенстве user_id по возрастанию.
// Места не повторяются: у равных по CO₂ они разные, но порядок между ними
// всегда один и тот же. Строки без предметов в рейтинг не попадают.
func Rank(rows []Row) []Entry {
	sorted := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Items > 0 {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CarbonSaved != sorted[j].CarbonSaved {
			return sorted[i].CarbonSaved > sorted[j].CarbonSaved
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]Entry, len(sorted))
	for i, r := range sorted {
		out[i] = Entry{Rank: i + 1, Row: r}
	}
	return out
}

// Top возвращает первые limit мест.
func Top(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// FindRank возвращает место пользователя в списке или 0.
func FindRank(entries []Entry, userID int64) int {
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank
		}
	}
	return 0
}

// RankFromStanding считает место вне топа как 1 + число участников со строго большим CO₂.
func RankFromStanding(s Standing) int {
	return int(s.Greater) + 1
}

// countAbove считает строки со строго большим CO₂.
func countAbove(entries []Entry, carbon float64) int64 {
	var n int64
	for _, e := range entries {
		if e.CarbonSaved > carbon {
			n++
		}
	}
	return n
}
