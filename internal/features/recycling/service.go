// Package recycling: service.go записывает сдачу, удаляет записи и листает журнал.
package recycling

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/streak"
)

// Tx: операции внутри транзакции пользователя.
// Строка user_progress к моменту вызова уже заблокирована.
type Tx interface {
	LockProgress(ctx context.Context, userID int64) (*Progress, error)
	SaveProgress(ctx context.Context, p *Progress) error
	InsertEvent(ctx context.Context, e *Event) error
	Counts(ctx context.Context, userID int64) (Counts, error)

	Ungranted(ctx context.Context, userID int64) ([]badges.Badge, error)
	GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error)

	Companion(ctx context.Context, id int64) (*companion.Companion, error)
	Ownership(ctx context.Context, userID, companionID int64) (*companion.Ownership, error)
	StageAt(ctx context.Context, companionID int64, number int) (*companion.Stage, error)
	AdvanceStage(ctx context.Context, userID, companionID int64, stage int) error

	// DeleteEvent удаляет запись пользователя и возвращает её; nil, если такой нет.
	DeleteEvent(ctx context.Context, userID, eventID int64) (*Event, error)
	// SubtractTotals уменьшает итоги, не опуская их ниже нуля.
	SubtractTotals(ctx context.Context, userID int64, carbon, water float64) error
}

// Store: хранилище журнала.
type Store interface {
	WithUserTx(ctx context.Context, userID int64, fn func(Tx) error) error
	CountEvents(ctx context.Context, userID int64) (int64, error)
	ListEvents(ctx context.Context, userID int64, limit, offset int) ([]Event, error)
}

// Recorder: счётчики, которые обновляются после фиксации транзакции.
type Recorder interface {
	EventSubmitted(material string)
	EventRemoved()
	BadgesGranted(n int)
	Evolution()
}

// Invalidator сбрасывает кэши, которые зависят от журнала.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service выполняет операции журнала.
type Service struct {
	store   Store
	metrics Recorder
	caches  []Invalidator
	loc     *time.Location
	now     func() time.Time
}

// NewService создаёт сервис журнала. loc задаёт часовой пояс «календарного дня» огонька.
func NewService(store Store, metrics Recorder, loc *time.Location) *Service {
	return &Service{store: store, metrics: metrics, loc: loc, now: time.Now}
}

// WithInvalidators подключает кэши, которые сбрасываются после каждой зафиксированной записи или удаления.
func (s *Service) WithInvalidators(caches ...Invalidator) *Service {
	s.caches = append(s.caches, caches...)
	return s
}

func (s *Service) invalidate(ctx context.Context) {
	for _, c := range s.caches {
		c.Invalidate(ctx)
	}
}

// Submit записывает сдачу и применяет к сводке огонёк, очки компаньона и значки.
// Всё происходит в одной транзакции: при любой ошибке не сохраняется ничего.
// Ошибки ввода возвращаются до обращения к хранилищу.
func (s *Service) Submit(ctx context.Context, userID int64, material impact.Material, count int) (*SubmitResult, error) {
	imp, err := impact.Compute(material, count)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := common.DateIn(now, s.loc)
	points := companion.PointsFor(material, count)

	var res SubmitResult
	err = s.store.WithUserTx(ctx, userID, func(tx Tx) error {
		p, err := tx.LockProgress(ctx, userID)
		if err != nil {
			return err
		}

		ev := Event{
			UserID:      userID,
			Material:    material,
			ItemCount:   count,
			CarbonSaved: imp.CarbonSaved,
			WaterSaved:  imp.WaterSaved,
			LoggedAt:    now,
		}
		if err := tx.InsertEvent(ctx, &ev); err != nil {
			return err
		}

		p.TotalCarbonSaved += imp.CarbonSaved
		p.TotalWaterSaved += imp.WaterSaved
		var change streak.Transition
		p.Streak, change = streak.Advance(p.Streak, today)
		p.CompanionPoints += points
		if err := tx.SaveProgress(ctx, p); err != nil {
			return err
		}

		evo, err := s.progressCompanion(ctx, tx, p)
		if err != nil {
			return err
		}

		earned, err := s.grantBadges(ctx, tx, p)
		if err != nil {
			return err
		}

		res = SubmitResult{
			Event:         ev,
			NewBadges:     earned,
			StreakCurrent: p.Streak.Current,
			StreakChange:  change,
			PointsEarned:  points,
			Evolution:     evo,
		}
		return nil
	})
	if err != nil {
		return nil, common.StorageError("submit event", err)
	}

	s.invalidate(ctx)
	s.metrics.EventSubmitted(string(material))
	s.metrics.BadgesGranted(len(res.NewBadges))
	if res.Evolution != nil {
		s.metrics.Evolution()
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"event_id":      res.Event.ID,
		"material":      material,
		"count":         count,
		"streak":        res.StreakCurrent,
		"streak_change": res.StreakChange.String(),
		"points":        points,
		"new_badges":    len(res.NewBadges),
		"evolved":       res.Evolution != nil,
	}).Info("Сдача записана")
	return &res, nil
}

// progressCompanion переводит выбранного компаньона на следующую стадию, если хватает очков.
// Без выбранного (или не открытого) компаньона очки копятся, но переходов нет.
func (s *Service) progressCompanion(ctx context.Context, tx Tx, p *Progress) (*companion.Evolution, error) {
	if p.SelectedCompanionID == nil {
		return nil, nil
	}
	cid := *p.SelectedCompanionID

	own, err := tx.Ownership(ctx, p.UserID, cid)
	if err != nil || own == nil || own.CurrentStage >= companion.MaxStage {
		return nil, err
	}

	next, err := tx.StageAt(ctx, cid, own.CurrentStage+1)
	if err != nil {
		return nil, err
	}
	stage, ok := companion.NextStage(own.CurrentStage, p.CompanionPoints, next)
	if !ok {
		return nil, nil
	}

	if err := tx.AdvanceStage(ctx, p.UserID, cid, stage); err != nil {
		return nil, err
	}
	c, err := tx.Companion(ctx, cid)
	if err != nil {
		return nil, err
	}
	return &companion.Evolution{
		CompanionID:   cid,
		CompanionName: c.Name,
		Emoji:         c.Emoji,
		NewStage:      stage,
		StageName:     next.Name,
	}, nil
}

// grantBadges проверяет ещё не полученные значки по сводке после записи.
func (s *Service) grantBadges(ctx context.Context, tx Tx, p *Progress) ([]badges.Badge, error) {
	candidates, err := tx.Ungranted(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	counts, err := tx.Counts(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	stats := badges.Stats{
		TotalLogs:     counts.Logs,
		TotalItems:    counts.Items,
		StreakCurrent: p.Streak.Current,
		CarbonSaved:   p.TotalCarbonSaved,
	}

	var earned []badges.Badge
	for _, b := range badges.Evaluate(stats, candidates) {
		granted, err := tx.GrantBadge(ctx, p.UserID, b.ID)
		if err != nil {
			return nil, err
		}
		if granted {
			earned = append(earned, b)
		}
	}
	return earned, nil
}

// Remove удаляет запись пользователя и вычитает её эффект из итогов (не ниже нуля).
// Огонёк, значки, очки и стадия компаньона не меняются.
func (s *Service) Remove(ctx context.Context, userID, eventID int64) error {
	var removed *Event
	err := s.store.WithUserTx(ctx, userID, func(tx Tx) error {
		if _, err := tx.LockProgress(ctx, userID); err != nil {
			return err
		}
		e, err := tx.DeleteEvent(ctx, userID, eventID)
		if err != nil {
			return err
		}
		if e == nil {
			return common.ErrEventNotFound
		}
		if err := tx.SubtractTotals(ctx, userID, e.CarbonSaved, e.WaterSaved); err != nil {
			return err
		}
		removed = e
		return nil
	})
	if errors.Is(err, common.ErrEventNotFound) {
		return err
	}
	if err != nil {
		return common.StorageError("remove event", err)
	}

	s.invalidate(ctx)
	s.metrics.EventRemoved()
	log.WithFields(log.Fields{
		"user_id":  userID,
		"event_id": eventID,
		"material": removed.Material,
		"count":    removed.ItemCount,
	}).Info("Запись о сдаче удалена")
	return nil
}

// List возвращает страницу журнала. page < 1 → 1, limit вне 1..50 → 20 или 50.
func (s *Service) List(ctx context.Context, userID int64, page, limit int) (*EventPage, error) {
	page, limit = normalizePage(page, limit)

	total, err := s.store.CountEvents(ctx, userID)
	if err != nil {
		return nil, common.StorageError("count events", err)
	}
	events, err := s.store.ListEvents(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, common.StorageError("list events", err)
	}

	return &EventPage{
		Events: events,
		Total:  total,
		Page:   page,
		Pages:  pagesFor(total, limit),
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return page, limit
}

func pagesFor(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// ParsePage разбирает номер страницы из текста команды.
func ParsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, common.NewValidationError("page", common.ErrInvalidPage, "Номер страницы — целое число от 1")
	}
	return n, nil
}
