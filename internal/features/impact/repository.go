// Package impact: repository.go читает агрегаты по таблице recycling_events.
package impact

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository строит отчёты по журналу сдачи.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий отчётов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// DailyTotals возвращает суммы по дням начиная с since. Дни без записей не возвращаются.
// Дата считается в часовом поясе tz.
func (r *Repository) DailyTotals(ctx context.Context, userID int64, since time.Time, tz string) ([]DayTotals, error) {
	query := `
		SELECT (logged_at AT TIME ZONE $3)::date AS day,
		       SUM(carbon_saved), SUM(water_saved), SUM(item_count)
		FROM recycling_events
		WHERE user_id = $1 AND logged_at >= $2
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.Query(ctx, query, userID, since, tz)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории: %w", err)
	}
	defer rows.Close()

	var out []DayTotals
	for rows.Next() {
		var d DayTotals
		if err := rows.Scan(&d.Date, &d.CarbonSaved, &d.WaterSaved, &d.Items); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	return out, nil
}

// MaterialTotals возвращает вклад каждого материала, самые «полезные» первыми.
func (r *Repository) MaterialTotals(ctx context.Context, userID int64) ([]MaterialTotals, error) {
	query := `
		SELECT material, COUNT(*), SUM(item_count), SUM(carbon_saved), SUM(water_saved)
		FROM recycling_events
		WHERE user_id = $1
		GROUP BY material
		ORDER BY SUM(carbon_saved) DESC, material
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса разбивки по материалам: %w", err)
	}
	defer rows.Close()

	var out []MaterialTotals
	for rows.Next() {
		var m MaterialTotals
		if err := rows.Scan(&m.Material, &m.Logs, &m.Items, &m.CarbonSaved, &m.WaterSaved); err != nil {
			return nil, fmt.Errorf("ошибка сканирования разбивки: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
