// Package badges: repository.go работает с таблицами badges и user_badges.
package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/db/postgres"
)

// Repository предоставляет чтение справочника значков и выдачу значков.
type Repository struct {
	db postgres.Querier
}

// NewRepository создаёт репозиторий значков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InTx возвращает репозиторий, работающий внутри транзакции tx.
func (r *Repository) InTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// ListForUser возвращает все значки с отметкой о получении.
// Сначала полученные (по времени получения), затем остальные по id.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]View, error) {
	query := `
		SELECT b.id, b.code, b.name, b.description, b.emoji, b.criteria_kind, b.threshold,
		       ub.earned_at
		FROM badges b
		LEFT JOIN user_badges ub ON ub.badge_id = b.id AND ub.user_id = $1
		ORDER BY ub.earned_at ASC NULLS LAST, b.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса значков: %w", err)
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		var (
			v         View
			kind      string
			threshold float64
			earnedAt  *time.Time
		)
		if err := rows.Scan(&v.ID, &v.Code, &v.Name, &v.Description, &v.Emoji, &kind, &threshold, &earnedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значка: %w", err)
		}
		c, err := ParseCriterion(kind, threshold)
		if err != nil {
			log.WithError(err).WithField("badge_id", v.ID).Warn("Значок с неизвестным условием")
		}
		v.Criterion = c
		v.Earned = earnedAt != nil
		v.EarnedAt = earnedAt
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения значков: %w", err)
	}
	return out, nil
}

// Ungranted возвращает значки, которых у пользователя ещё нет.
// Значки с неизвестным условием пропускаются.
func (r *Repository) Ungranted(ctx context.Context, userID int64) ([]Badge, error) {
	query := `
		SELECT b.id, b.code, b.name, b.description, b.emoji, b.criteria_kind, b.threshold
		FROM badges b
		WHERE NOT EXISTS (
			SELECT 1 FROM user_badges ub WHERE ub.badge_id = b.id AND ub.user_id = $1
		)
		ORDER BY b.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса неполученных значков: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var (
			b         Badge
			kind      string
			threshold float64
		)
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Description, &b.Emoji, &kind, &threshold); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значка: %w", err)
		}
		c, err := ParseCriterion(kind, threshold)
		if err != nil {
			log.WithError(err).WithField("badge_id", b.ID).Warn("Значок с неизвестным условием пропущен")
			continue
		}
		b.Criterion = c
		out = append(out, b)
	}
	return out, rows.Err()
}

// Grant выдаёт значок. Повторная выдача ничего не делает и возвращает false.
func (r *Repository) Grant(ctx context.Context, userID, badgeID int64) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи значка %d: %w", badgeID, err)
	}
	return tag.RowsAffected() == 1, nil
}
