// Package dashboard собирает сводку пользователя: итоги, огонёк, последние записи
// и прогресс выбранного компаньона. Только чтение.
package dashboard

import (
	"context"
	"time"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/members"
	"serotonyl.ru/ecobot/internal/features/recycling"
)

// RecentLimit: сколько последних записей показывать.
const RecentLimit = 5

// Summary: сводка для /stats и GET /api/dashboard.
type Summary struct {
	DisplayName      string              `json:"display_name"`
	IsPremium        bool                `json:"is_premium"`
	TotalCarbonSaved float64             `json:"total_carbon_saved"`
	TotalWaterSaved  float64             `json:"total_water_saved"`
	Equivalents      impact.Equivalents  `json:"equivalents"`
	StreakCurrent    int                 `json:"streak_current"`
	StreakAlive      bool                `json:"streak_alive"`
	StreakBest       int                 `json:"streak_best"`
	TotalItems       int64               `json:"total_items"`
	TotalLogs        int64               `json:"total_logs"`
	CompanionPoints  int64               `json:"companion_points"`
	RecentEvents     []recycling.Event   `json:"recent_events"`
	Companion        *companion.Progress `json:"companion"`
}

// MemberReader: профиль пользователя.
type MemberReader interface {
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
}

// LedgerReader: сводка и журнал.
type LedgerReader interface {
	GetProgress(ctx context.Context, userID int64) (*recycling.Progress, error)
	Totals(ctx context.Context, userID int64) (recycling.Counts, error)
	ListEvents(ctx context.Context, userID int64, limit, offset int) ([]recycling.Event, error)
}

// CompanionReader: прогресс выбранного компаньона.
type CompanionReader interface {
	SelectedProgress(ctx context.Context, userID int64) (*companion.Progress, error)
}

// Service собирает сводку.
type Service struct {
	members    MemberReader
	ledger     LedgerReader
	companions CompanionReader
	loc        *time.Location
	now        func() time.Time
}

// NewService создаёт сервис сводки.
func NewService(m MemberReader, l LedgerReader, c CompanionReader, loc *time.Location) *Service {
	return &Service{members: m, ledger: l, companions: c, loc: loc, now: time.Now}
}

// GetSummary возвращает сводку пользователя.
// StreakCurrent: сохранённая серия, StreakAlive: продолжится ли она при записи сегодня.
func (s *Service) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	m, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.ledger.GetProgress(ctx, userID)
	if err != nil {
		return nil, common.StorageError("dashboard progress", err)
	}
	counts, err := s.ledger.Totals(ctx, userID)
	if err != nil {
		return nil, common.StorageError("dashboard totals", err)
	}
	recent, err := s.ledger.ListEvents(ctx, userID, RecentLimit, 0)
	if err != nil {
		return nil, common.StorageError("dashboard recent", err)
	}
	cp, err := s.companions.SelectedProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := common.DateIn(s.now(), s.loc)
	return &Summary{
		DisplayName:      m.DisplayName(),
		IsPremium:        m.IsPremium,
		TotalCarbonSaved: p.TotalCarbonSaved,
		TotalWaterSaved:  p.TotalWaterSaved,
		Equivalents:      impact.ComputeEquivalents(p.TotalCarbonSaved, p.TotalWaterSaved),
		StreakCurrent:    p.Streak.Current,
		StreakAlive:      p.Streak.Alive(today),
		StreakBest:       p.Streak.Best,
		TotalItems:       counts.Items,
		TotalLogs:        counts.Logs,
		CompanionPoints:  p.CompanionPoints,
		RecentEvents:     recent,
		Companion:        cp,
	}, nil
}
