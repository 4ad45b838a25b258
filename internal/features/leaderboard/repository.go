// Package leaderboard: repository.go считает итоги недели по recycling_events.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository: чтение недельных итогов. Только чтение, без блокировок.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий рейтинга.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// WindowTop возвращает до limit лучших участников с момента since.
func (r *Repository) WindowTop(ctx context.Context, since time.Time, limit int) ([]Row, error) {
	query := `
		SELECT e.user_id,
		       COALESCE(NULLIF(m.display_name, ''), NULLIF(m.first_name, ''), NULLIF(m.username, ''), 'Эко-герой'),
		       SUM(e.carbon_saved),
		       SUM(e.item_count)
		FROM recycling_events e
		LEFT JOIN members m ON m.user_id = e.user_id
		WHERE e.logged_at >= $1
		GROUP BY e.user_id, m.display_name, m.first_name, m.username
		HAVING SUM(e.item_count) > 0
		ORDER BY SUM(e.carbon_saved) DESC, e.user_id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса рейтинга: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.CarbonSaved, &row.Items); err != nil {
			return nil, fmt.Errorf("ошибка сканирования рейтинга: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Standing возвращает итог пользователя за окно и число участников впереди.
// Если пользователь в окне ничего не сдавал, его итог считается нулевым.
func (r *Repository) Standing(ctx context.Context, since time.Time, userID int64) (*Standing, error) {
	query := `
		WITH totals AS (
			SELECT user_id, SUM(carbon_saved) AS carbon
			FROM recycling_events
			WHERE logged_at >= $1
			GROUP BY user_id
			HAVING SUM(item_count) > 0
		), me AS (
			SELECT COALESCE((SELECT carbon FROM totals WHERE user_id = $2), 0) AS carbon
		)
		SELECT me.carbon, (SELECT COUNT(*) FROM totals o WHERE o.user_id <> $2 AND o.carbon > me.carbon)
		FROM me
	`
	var s Standing
	if err := r.db.QueryRow(ctx, query, since, userID).Scan(&s.CarbonSaved, &s.Greater); err != nil {
		return nil, fmt.Errorf("ошибка расчёта места (user_id=%d): %w", userID, err)
	}
	return &s, nil
}
