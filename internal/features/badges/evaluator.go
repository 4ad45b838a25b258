package badges

// Evaluate возвращает значки из candidates, условия которых выполнены для stats.
//
// candidates: значки, которых у пользователя ещё нет. Условия независимы
// и ничего не меняют, поэтому порядок проверки не важен; результат сохраняет
// порядок candidates.
func Evaluate(stats Stats, candidates []Badge) []Badge {
	var earned []Badge
	for _, b := range candidates {
		if b.Criterion == nil {
			continue
		}
		if b.Criterion.Met(stats) {
			earned = append(earned, b)
		}
	}
	return earned
}
