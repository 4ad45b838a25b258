// Package companion: repository.go работает с companions, companion_stages и user_companions.
package companion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/db/postgres"
)

// Repository предоставляет доступ к компаньонам.
type Repository struct {
	db   postgres.Querier
	pool *pgxpool.Pool // для операций, которым нужна своя транзакция
}

// NewRepository создаёт репозиторий компаньонов.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// InTx возвращает репозиторий, работающий внутри транзакции tx.
func (r *Repository) InTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx, pool: r.pool}
}

const companionColumns = `c.id, c.name, c.emoji, c.color, c.conservation_status, c.is_premium, c.price_cents`

func scanCompanion(row pgx.Row, c *Companion, extra ...any) error {
	dest := append([]any{
		&c.ID, &c.Name, &c.Emoji, &c.Color, &c.ConservationStatus, &c.IsPremium, &c.PriceCents,
	}, extra...)
	return row.Scan(dest...)
}

// Get возвращает компаньона по id или common.ErrCompanionNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*Companion, error) {
	query := `SELECT ` + companionColumns + ` FROM companions c WHERE c.id = $1`
	var c Companion
	if err := scanCompanion(r.db.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCompanionNotFound
		}
		return nil, fmt.Errorf("ошибка чтения компаньона %d: %w", id, err)
	}
	return &c, nil
}

// List возвращает каталог с отметками владения и выбора для пользователя.
func (r *Repository) List(ctx context.Context, userID int64) ([]ListItem, error) {
	query := `
		SELECT ` + companionColumns + `,
		       COALESCE(uc.current_stage, 0),
		       COALESCE(up.selected_companion_id = c.id, FALSE)
		FROM companions c
		LEFT JOIN user_companions uc ON uc.companion_id = c.id AND uc.user_id = $1
		LEFT JOIN user_progress up ON up.user_id = $1
		ORDER BY c.is_premium, c.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса каталога: %w", err)
	}
	defer rows.Close()

	var out []ListItem
	for rows.Next() {
		var it ListItem
		if err := scanCompanion(rows, &it.Companion, &it.CurrentStage, &it.Selected); err != nil {
			return nil, fmt.Errorf("ошибка сканирования компаньона: %w", err)
		}
		it.Owned = it.CurrentStage > 0
		out = append(out, it)
	}
	return out, rows.Err()
}

// Collection возвращает открытых пользователем компаньонов с названием текущей стадии.
func (r *Repository) Collection(ctx context.Context, userID int64) ([]CollectionItem, error) {
	query := `
		SELECT ` + companionColumns + `, uc.current_stage, COALESCE(s.stage_name, ''), uc.unlocked_at
		FROM user_companions uc
		JOIN companions c ON c.id = uc.companion_id
		LEFT JOIN companion_stages s ON s.companion_id = c.id AND s.stage_number = uc.current_stage
		WHERE uc.user_id = $1
		ORDER BY uc.unlocked_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса коллекции: %w", err)
	}
	defer rows.Close()

	var out []CollectionItem
	for rows.Next() {
		var it CollectionItem
		if err := scanCompanion(rows, &it.Companion, &it.CurrentStage, &it.StageName, &it.UnlockedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования коллекции: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Stages возвращает стадии компаньона по возрастанию номера.
func (r *Repository) Stages(ctx context.Context, companionID int64) ([]Stage, error) {
	query := `
		SELECT companion_id, stage_number, points_required, stage_name
		FROM companion_stages
		WHERE companion_id = $1
		ORDER BY stage_number
	`
	rows, err := r.db.Query(ctx, query, companionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса стадий: %w", err)
	}
	defer rows.Close()

	var out []Stage
	for rows.Next() {
		var s Stage
		if err := rows.Scan(&s.CompanionID, &s.Number, &s.PointsRequired, &s.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования стадии: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StageAt возвращает стадию с номером number или nil, если такой нет.
func (r *Repository) StageAt(ctx context.Context, companionID int64, number int) (*Stage, error) {
	query := `
		SELECT companion_id, stage_number, points_required, stage_name
		FROM companion_stages
		WHERE companion_id = $1 AND stage_number = $2
	`
	var s Stage
	err := r.db.QueryRow(ctx, query, companionID, number).Scan(&s.CompanionID, &s.Number, &s.PointsRequired, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения стадии %d: %w", number, err)
	}
	return &s, nil
}

// Ownership возвращает владение или nil, если компаньон не открыт.
func (r *Repository) Ownership(ctx context.Context, userID, companionID int64) (*Ownership, error) {
	query := `
		SELECT user_id, companion_id, current_stage, unlocked_at
		FROM user_companions
		WHERE user_id = $1 AND companion_id = $2
	`
	var o Ownership
	err := r.db.QueryRow(ctx, query, userID, companionID).Scan(&o.UserID, &o.CompanionID, &o.CurrentStage, &o.UnlockedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения владения: %w", err)
	}
	return &o, nil
}

// InsertOwnership открывает компаньона на стадии 1.
// Если он уже открыт, ничего не меняет и возвращает false.
// Тот же запрос использует платёжный сервис, поэтому двойная разблокировка безопасна.
func (r *Repository) InsertOwnership(ctx context.Context, userID, companionID int64) (bool, error) {
	query := `
		INSERT INTO user_companions (user_id, companion_id, current_stage)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, companion_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, companionID)
	if err != nil {
		return false, fmt.Errorf("ошибка открытия компаньона: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AdvanceStage переводит компаньона на стадию stage. Стадия только растёт:
// если текущая уже не меньше, строка не меняется.
func (r *Repository) AdvanceStage(ctx context.Context, userID, companionID int64, stage int) error {
	query := `
		UPDATE user_companions
		SET current_stage = $3
		WHERE user_id = $1 AND companion_id = $2 AND current_stage < $3
	`
	if _, err := r.db.Exec(ctx, query, userID, companionID, stage); err != nil {
		return fmt.Errorf("ошибка смены стадии: %w", err)
	}
	return nil
}

// Select делает компаньона выбранным.
func (r *Repository) Select(ctx context.Context, userID, companionID int64) error {
	query := `
		INSERT INTO user_progress (user_id, selected_companion_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET selected_companion_id = EXCLUDED.selected_companion_id, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, companionID); err != nil {
		return fmt.Errorf("ошибка выбора компаньона: %w", err)
	}
	return nil
}

// SelectedProgress возвращает прогресс выбранного компаньона или nil, если он не выбран.
func (r *Repository) SelectedProgress(ctx context.Context, userID int64) (*Progress, error) {
	query := `
		SELECT ` + companionColumns + `,
		       uc.current_stage, COALESCE(cur.stage_name, ''),
		       nxt.stage_name, nxt.points_required,
		       up.companion_points
		FROM user_progress up
		JOIN companions c ON c.id = up.selected_companion_id
		JOIN user_companions uc ON uc.user_id = up.user_id AND uc.companion_id = c.id
		LEFT JOIN companion_stages cur ON cur.companion_id = c.id AND cur.stage_number = uc.current_stage
		LEFT JOIN companion_stages nxt ON nxt.companion_id = c.id AND nxt.stage_number = uc.current_stage + 1
		WHERE up.user_id = $1
	`
	var (
		p        Progress
		nextName *string
	)
	err := scanCompanion(r.db.QueryRow(ctx, query, userID), &p.Companion,
		&p.CurrentStage, &p.StageName, &nextName, &p.NextStagePoints, &p.Points)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения прогресса компаньона: %w", err)
	}
	if nextName != nil {
		p.NextStageName = *nextName
	}
	p.IsMaxStage = p.CurrentStage >= MaxStage || p.NextStagePoints == nil
	return &p, nil
}

// GrantPlanetPass включает премиум и открывает всех премиальных компаньонов одной транзакцией.
// Возвращает число впервые открытых компаньонов.
func (r *Repository) GrantPlanetPass(ctx context.Context, userID int64) (int64, error) {
	var unlocked int64
	err := postgres.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE members SET is_premium = TRUE, updated_at = NOW() WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("ошибка включения премиума: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrUserNotFound
		}

		tag, err = tx.Exec(ctx, `
			INSERT INTO user_companions (user_id, companion_id, current_stage)
			SELECT $1, id, 1 FROM companions WHERE is_premium
			ON CONFLICT (user_id, companion_id) DO NOTHING
		`, userID)
		if err != nil {
			return fmt.Errorf("ошибка открытия премиальных компаньонов: %w", err)
		}
		unlocked = tag.RowsAffected()
		return nil
	})
	return unlocked, err
}
