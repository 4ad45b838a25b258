package impact

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Границы периода истории (в днях).
const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
)

// HistoryStore: источник агрегатов для истории.
type HistoryStore interface {
	DailyTotals(ctx context.Context, userID int64, since time.Time, tz string) ([]DayTotals, error)
	MaterialTotals(ctx context.Context, userID int64) ([]MaterialTotals, error)
}

// Service отдаёт отчёты по эффекту пользователя.
type Service struct {
	store HistoryStore
	loc   *time.Location
	now   func() time.Time
}

// NewService создаёт сервис отчётов.
func NewService(store HistoryStore, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// History возвращает дневную серию за days дней, включая сегодняшний.
// days вне [1, 365] приводится к границе, 0 означает 30.
// Дни без записей заполняются нулями, чтобы график был непрерывным.
func (s *Service) History(ctx context.Context, userID int64, days int) (*History, error) {
	switch {
	case days == 0:
		days = DefaultHistoryDays
	case days < 1:
		days = 1
	case days > MaxHistoryDays:
		days = MaxHistoryDays
	}

	today := common.DateIn(s.now(), s.loc)
	since := today.AddDate(0, 0, -(days - 1))

	daily, err := s.store.DailyTotals(ctx, userID, since, s.loc.String())
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения истории")
		return nil, common.StorageError("impact history", err)
	}
	byMaterial, err := s.store.MaterialTotals(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения разбивки по материалам")
		return nil, common.StorageError("impact by material", err)
	}

	return &History{
		Days:       days,
		Series:     fillDays(since, days, daily),
		ByMaterial: byMaterial,
	}, nil
}

// fillDays раскладывает найденные дни по непрерывной серии длиной days.
func fillDays(since time.Time, days int, found []DayTotals) []DayTotals {
	series := make([]DayTotals, days)
	for i := range series {
		series[i].Date = since.AddDate(0, 0, i)
	}
	for _, d := range found {
		for i := range series {
			if common.SameDate(series[i].Date, d.Date) {
				series[i].CarbonSaved = d.CarbonSaved
				series[i].WaterSaved = d.WaterSaved
				series[i].Items = d.Items
				break
			}
		}
	}
	return series
}
