// Package streak: service.go читает серию и рассылает вечерние напоминания.
package streak

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/config"
)

// Store: то, что сервису нужно от хранилища.
type Store interface {
	GetState(ctx context.Context, userID int64) (*State, error)
	ReminderCandidates(ctx context.Context, minStreak int, today time.Time) ([]Candidate, error)
	MarkReminderSent(ctx context.Context, userID int64, today time.Time) error
}

// Service управляет серией.
type Service struct {
	store Store
	cfg   *config.Config
	loc   *time.Location
	now   func() time.Time
}

// NewService создаёт сервис серий.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg, loc: cfg.Location(), now: time.Now}
}

// Today: текущая дата по часам сервера в APP_TIMEZONE.
func (s *Service) Today() time.Time {
	return common.DateIn(s.now(), s.loc)
}

// GetStreak возвращает серию пользователя.
func (s *Service) GetStreak(ctx context.Context, userID int64) (*State, error) {
	st, err := s.store.GetState(ctx, userID)
	if err != nil {
		return nil, common.StorageError("get streak", err)
	}
	return st, nil
}

// SendReminders напоминает тем, у кого огонёк погаснет в полночь.
// До STREAK_REMINDER_HOUR ничего не делает. Одно напоминание в день на пользователя.
func (s *Service) SendReminders(ctx context.Context, send func(ctx context.Context, userID int64, text string) error) error {
	now := s.now().In(s.loc)
	if now.Hour() < s.cfg.StreakReminderHour {
		return nil
	}
	today := common.DateIn(now, s.loc)

	candidates, err := s.store.ReminderCandidates(ctx, s.cfg.StreakReminderThreshold, today)
	if err != nil {
		return fmt.Errorf("ошибка получения кандидатов: %w", err)
	}

	sent := 0
	for _, c := range candidates {
		text := fmt.Sprintf(
			"🔥 Твой огонёк горит уже %d %s!\n"+
				"Сдай сегодня хоть одну бутылку или банку, иначе серия прервётся в полночь.\n"+
				"Команда: /log <материал> <количество>",
			c.Current, common.PluralizeDays(c.Current),
		)
		if err := send(ctx, c.UserID, text); err != nil {
			log.WithError(err).WithField("user_id", c.UserID).Warn("Не удалось отправить напоминание")
			continue
		}
		if err := s.store.MarkReminderSent(ctx, c.UserID, today); err != nil {
			log.WithError(err).WithField("user_id", c.UserID).Error("Не удалось отметить напоминание")
			continue
		}
		sent++
	}

	log.WithFields(log.Fields{
		"candidates": len(candidates),
		"sent":       sent,
	}).Info("Напоминания об огоньке разосланы")
	return nil
}
