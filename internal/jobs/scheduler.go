// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасные напоминания о серии,
// прогрев кэша рейтинга и очистку админ-состояний.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Reminder рассылает напоминания о гаснущей серии.
type Reminder interface {
	SendReminders(ctx context.Context, send func(ctx context.Context, userID int64, text string) error) error
}

// Warmer пересчитывает кэш рейтинга.
type Warmer interface {
	Warm(ctx context.Context) error
}

// StateCleaner чистит истёкшие админ-диалоги.
type StateCleaner interface {
	CleanupStates() int
}

// Options: что и как часто запускать.
type Options struct {
	Location         *time.Location
	RemindersEnabled bool
	WarmEvery        time.Duration // 0: не прогревать
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	opts     Options
	reminder Reminder
	warmer   Warmer
	cleaner  StateCleaner
	out      common.Messenger
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(reminder Reminder, warmer Warmer, cleaner StateCleaner, out common.Messenger, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(opts.Location)),
		opts:     opts,
		reminder: reminder,
		warmer:   warmer,
		cleaner:  cleaner,
		out:      out,
	}
}

// Start регистрирует и запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.RemindersEnabled && s.reminder != nil {
		// Напоминания каждый час
		if _, err := s.cron.AddFunc("0 * * * *", func() { s.remind(ctx) }); err != nil {
			return err
		}
	}

	if s.opts.WarmEvery > 0 && s.warmer != nil {
		s.cron.Schedule(cron.Every(s.opts.WarmEvery), cron.FuncJob(func() { s.warm(ctx) }))
	}

	if s.cleaner != nil {
		if _, err := s.cron.AddFunc("*/10 * * * *", s.cleanup); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"jobs":     len(s.cron.Entries()),
		"location": s.opts.Location.String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

func (s *Scheduler) remind(ctx context.Context) {
	log.Debug("[CRON] Проверка напоминаний")
	if err := s.reminder.SendReminders(ctx, s.out.SendText); err != nil {
		log.WithError(err).Error("[CRON] Ошибка напоминаний")
	}
}

func (s *Scheduler) warm(ctx context.Context) {
	if err := s.warmer.Warm(ctx); err != nil {
		log.WithError(err).Warn("[CRON] Не удалось прогреть кэш рейтинга")
	}
}

func (s *Scheduler) cleanup() {
	if n := s.cleaner.CleanupStates(); n > 0 {
		log.WithField("removed", n).Debug("[CRON] Очищены истёкшие админ-состояния")
	}
}
