// Package members: repository.go отвечает за все операции с таблицей members в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/ecobot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert добавляет участника или обновляет имя/username из Telegram.
// Выбранное имя, флаги админа и премиума не трогает.
func (r *Repository) Upsert(ctx context.Context, id Identity) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
		WHERE (members.username, members.first_name, members.last_name)
		      IS DISTINCT FROM (EXCLUDED.username, EXCLUDED.first_name, EXCLUDED.last_name)
	`
	if _, err := r.db.Exec(ctx, query, id.UserID, id.Username, id.FirstName, id.LastName); err != nil {
		return fmt.Errorf("ошибка создания/обновления участника: %w", err)
	}
	return nil
}

// Ensure создаёт пустую запись участника, если её нет. Возвращает true, если запись создана.
func (r *Repository) Ensure(ctx context.Context, userID int64) (bool, error) {
	query := `INSERT INTO members (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("ошибка регистрации участника: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByUserID возвращает участника или common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT user_id, username, first_name, last_name, COALESCE(display_name, ''),
		       is_admin, is_premium, created_at, updated_at
		FROM members
		WHERE user_id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.Nickname,
		&m.IsAdmin, &m.IsPremium, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения участника (user_id=%d): %w", userID, err)
	}
	return &m, nil
}

// SetDisplayName сохраняет выбранное имя.
func (r *Repository) SetDisplayName(ctx context.Context, userID int64, name string) error {
	query := `UPDATE members SET display_name = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, query, userID, name)
	if err != nil {
		return fmt.Errorf("ошибка обновления имени: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// IsAdmin проверяет флаг администратора в базе.
func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx, `SELECT is_admin FROM members WHERE user_id = $1`, userID).Scan(&isAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка проверки прав: %w", err)
	}
	return isAdmin, nil
}
