// Package recycling: repository.go хранит журнал recycling_events и сводку user_progress в PostgreSQL.
package recycling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/ecobot/internal/db/postgres"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
)

// Repository: хранилище журнала на pgx.
type Repository struct {
	pool       *pgxpool.Pool
	badges     *badges.Repository
	companions *companion.Repository
}

// NewRepository создаёт хранилище журнала.
func NewRepository(pool *pgxpool.Pool, badgeRepo *badges.Repository, companionRepo *companion.Repository) *Repository {
	return &Repository{pool: pool, badges: badgeRepo, companions: companionRepo}
}

// WithUserTx открывает транзакцию, блокирует строку user_progress пользователя
// и выполняет fn. Ошибка из fn откатывает всё.
//
// Блокировка строки сериализует записи и удаления одного пользователя;
// разные пользователи друг другу не мешают.
func (r *Repository) WithUserTx(ctx context.Context, userID int64, fn func(Tx) error) error {
	return postgres.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID,
		); err != nil {
			return fmt.Errorf("ошибка создания сводки: %w", err)
		}
		return fn(&pgTx{
			tx:         tx,
			badges:     r.badges.InTx(tx),
			companions: r.companions.InTx(tx),
		})
	})
}

// CountEvents возвращает число записей пользователя.
func (r *Repository) CountEvents(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recycling_events WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта записей: %w", err)
	}
	return n, nil
}

// ListEvents возвращает записи пользователя, новые первыми.
func (r *Repository) ListEvents(ctx context.Context, userID int64, limit, offset int) ([]Event, error) {
	query := `
		SELECT id, user_id, material, item_count, carbon_saved, water_saved, logged_at
		FROM recycling_events
		WHERE user_id = $1
		ORDER BY logged_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса журнала: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0, limit)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Material, &e.ItemCount, &e.CarbonSaved, &e.WaterSaved, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetProgress читает сводку без блокировки. Пользователь без сводки получает нулевую.
func (r *Repository) GetProgress(ctx context.Context, userID int64) (*Progress, error) {
	return scanProgress(r.pool.QueryRow(ctx, progressQuery, userID), userID)
}

// Totals возвращает число записей и предметов пользователя.
func (r *Repository) Totals(ctx context.Context, userID int64) (Counts, error) {
	return countTotals(ctx, r.pool, userID)
}

const progressQuery = `
	SELECT total_carbon_saved, total_water_saved,
	       streak_current, streak_best, streak_last_log_date,
	       selected_companion_id, companion_points
	FROM user_progress
	WHERE user_id = $1
`

func scanProgress(row pgx.Row, userID int64) (*Progress, error) {
	p := Progress{UserID: userID}
	err := row.Scan(
		&p.TotalCarbonSaved, &p.TotalWaterSaved,
		&p.Streak.Current, &p.Streak.Best, &p.Streak.LastLogDate,
		&p.SelectedCompanionID, &p.CompanionPoints,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сводки (user_id=%d): %w", userID, err)
	}
	return &p, nil
}

func countTotals(ctx context.Context, db postgres.Querier, userID int64) (Counts, error) {
	var c Counts
	err := db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(item_count), 0) FROM recycling_events WHERE user_id = $1`, userID,
	).Scan(&c.Logs, &c.Items)
	if err != nil {
		return Counts{}, fmt.Errorf("ошибка подсчёта итогов: %w", err)
	}
	return c, nil
}

// pgTx: операции внутри одной транзакции пользователя.
type pgTx struct {
	tx         pgx.Tx
	badges     *badges.Repository
	companions *companion.Repository
}

func (t *pgTx) LockProgress(ctx context.Context, userID int64) (*Progress, error) {
	return scanProgress(t.tx.QueryRow(ctx, progressQuery+` FOR UPDATE`, userID), userID)
}

func (t *pgTx) SaveProgress(ctx context.Context, p *Progress) error {
	query := `
		UPDATE user_progress
		SET total_carbon_saved = $2,
		    total_water_saved = $3,
		    streak_current = $4,
		    streak_best = $5,
		    streak_last_log_date = $6,
		    companion_points = $7,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := t.tx.Exec(ctx, query, p.UserID,
		p.TotalCarbonSaved, p.TotalWaterSaved,
		p.Streak.Current, p.Streak.Best, p.Streak.LastLogDate,
		p.CompanionPoints,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения сводки: %w", err)
	}
	return nil
}

func (t *pgTx) InsertEvent(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO recycling_events (user_id, material, item_count, carbon_saved, water_saved, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := t.tx.QueryRow(ctx, query,
		e.UserID, string(e.Material), e.ItemCount, e.CarbonSaved, e.WaterSaved, e.LoggedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("ошибка записи о сдаче: %w", err)
	}
	return nil
}

func (t *pgTx) Counts(ctx context.Context, userID int64) (Counts, error) {
	return countTotals(ctx, t.tx, userID)
}

func (t *pgTx) Ungranted(ctx context.Context, userID int64) ([]badges.Badge, error) {
	return t.badges.Ungranted(ctx, userID)
}

func (t *pgTx) GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	return t.badges.Grant(ctx, userID, badgeID)
}

func (t *pgTx) Companion(ctx context.Context, id int64) (*companion.Companion, error) {
	return t.companions.Get(ctx, id)
}

func (t *pgTx) Ownership(ctx context.Context, userID, companionID int64) (*companion.Ownership, error) {
	return t.companions.Ownership(ctx, userID, companionID)
}

func (t *pgTx) StageAt(ctx context.Context, companionID int64, number int) (*companion.Stage, error) {
	return t.companions.StageAt(ctx, companionID, number)
}

func (t *pgTx) AdvanceStage(ctx context.Context, userID, companionID int64, stage int) error {
	return t.companions.AdvanceStage(ctx, userID, companionID, stage)
}

func (t *pgTx) DeleteEvent(ctx context.Context, userID, eventID int64) (*Event, error) {
	query := `
		DELETE FROM recycling_events
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, material, item_count, carbon_saved, water_saved, logged_at
	`
	var e Event
	err := t.tx.QueryRow(ctx, query, eventID, userID).Scan(
		&e.ID, &e.UserID, &e.Material, &e.ItemCount, &e.CarbonSaved, &e.WaterSaved, &e.LoggedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка удаления записи %d: %w", eventID, err)
	}
	return &e, nil
}

func (t *pgTx) SubtractTotals(ctx context.Context, userID int64, carbon, water float64) error {
	query := `
		UPDATE user_progress
		SET total_carbon_saved = GREATEST(0, total_carbon_saved - $2),
		    total_water_saved = GREATEST(0, total_water_saved - $3),
		    updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := t.tx.Exec(ctx, query, userID, carbon, water); err != nil {
		return fmt.Errorf("ошибка уменьшения итогов: %w", err)
	}
	return nil
}
