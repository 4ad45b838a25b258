// Package streak: repository.go читает серии из user_progress и отмечает напоминания.
// Сама серия меняется только в транзакции записи о сдаче (пакет recycling).
package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет чтение серий и учёт напоминаний.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий серий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetState возвращает серию пользователя. Пользователь без записей получает нулевую серию.
func (r *Repository) GetState(ctx context.Context, userID int64) (*State, error) {
	query := `
		SELECT streak_current, streak_best, streak_last_log_date
		FROM user_progress
		WHERE user_id = $1
	`
	var s State
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.Current, &s.Best, &s.LastLogDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения серии (user_id=%d): %w", userID, err)
	}
	return &s, nil
}

// ReminderCandidates возвращает пользователей с серией >= minStreak, которые сдавали
// вчера, ещё не сдавали сегодня и сегодня не получали напоминание.
func (r *Repository) ReminderCandidates(ctx context.Context, minStreak int, today time.Time) ([]Candidate, error) {
	query := `
		SELECT user_id, streak_current
		FROM user_progress
		WHERE streak_current >= $1
		  AND streak_last_log_date = $2::date - 1
		  AND (reminder_sent_on IS NULL OR reminder_sent_on < $2::date)
		ORDER BY user_id
	`
	rows, err := r.db.Query(ctx, query, minStreak, today)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска кандидатов на напоминание: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.UserID, &c.Current); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkReminderSent помечает, что напоминание за день today уже отправлено.
func (r *Repository) MarkReminderSent(ctx context.Context, userID int64, today time.Time) error {
	query := `UPDATE user_progress SET reminder_sent_on = $2::date WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, today); err != nil {
		return fmt.Errorf("ошибка отметки напоминания: %w", err)
	}
	return nil
}
