// Package leaderboard: service.go собирает рейтинг недели.
package leaderboard

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/metrics"
)

// Store: чтение недельных итогов.
type Store interface {
	WindowTop(ctx context.Context, since time.Time, limit int) ([]Row, error)
	Standing(ctx context.Context, since time.Time, userID int64) (*Standing, error)
}

// Cache: снимок топа недели.
type Cache interface {
	Get(ctx context.Context, key string) ([]Row, bool, error)
	Set(ctx context.Context, key string, rows []Row, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CacheRecorder учитывает попадания в кэш.
type CacheRecorder interface {
	LeaderboardCache(result string)
}

// Options: параметры рейтинга.
type Options struct {
	Size     int
	CacheTTL time.Duration
	Location *time.Location
}

// Service строит рейтинг. Топ берётся из кэша, место пользователя считается всегда заново.
type Service struct {
	store   Store
	cache   Cache
	metrics CacheRecorder
	opts    Options
	now     func() time.Time
}

// NewService создаёт сервис рейтинга. cache может быть nil: тогда всё читается из БД.
func NewService(store Store, cache Cache, rec CacheRecorder, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{store: store, cache: cache, metrics: rec, opts: opts, now: time.Now}
}

// WeekStart: начало текущего окна.
func (s *Service) WeekStart() time.Time {
	return common.WeekStart(s.now(), s.opts.Location)
}

// GetLeaderboard возвращает топ недели и место пользователя userID.
func (s *Service) GetLeaderboard(ctx context.Context, userID int64) (*Board, error) {
	since := s.WeekStart()

	rows, err := s.top(ctx, since)
	if err != nil {
		return nil, common.StorageError("leaderboard top", err)
	}
	entries := Top(Rank(rows), s.opts.Size)

	board := &Board{WeekStart: since, Entries: entries}
	if r := FindRank(entries, userID); r > 0 {
		board.CallerRank = &r
		return board, nil
	}

	st, err := s.store.Standing(ctx, since, userID)
	if err != nil {
		return nil, common.StorageError("leaderboard standing", err)
	}
	if st == nil {
		// без итога за окно впереди все участники с ненулевым CO₂
		st = &Standing{Greater: countAbove(Rank(rows), 0)}
	}
	r := RankFromStanding(*st)
	board.CallerRank = &r
	return board, nil
}

// Warm пересчитывает топ и кладёт его в кэш.
func (s *Service) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	since := s.WeekStart()
	rows, err := s.store.WindowTop(ctx, since, s.opts.Size)
	if err != nil {
		return common.StorageError("leaderboard warm", err)
	}
	if err := s.cache.Set(ctx, CacheKey(since), rows, s.opts.CacheTTL); err != nil {
		return err
	}
	log.WithFields(log.Fields{"week_start": since.Format("2006-01-02"), "rows": len(rows)}).Debug("Кэш рейтинга обновлён")
	return nil
}

// Invalidate удаляет топ текущей недели из кэша. Ошибки Redis только логируются.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CacheKey(s.WeekStart())); err != nil {
		log.WithError(err).Warn("Не удалось сбросить кэш рейтинга")
	}
}

// top читает топ из кэша, а при промахе или сбое Redis: из БД.
func (s *Service) top(ctx context.Context, since time.Time) ([]Row, error) {
	if s.cache == nil {
		return s.store.WindowTop(ctx, since, s.opts.Size)
	}

	key := CacheKey(since)
	rows, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.LeaderboardCache(metrics.CacheError)
		log.WithError(err).Warn("Кэш рейтинга недоступен, читаем из БД")
	case ok:
		s.metrics.LeaderboardCache(metrics.CacheHit)
		return rows, nil
	default:
		s.metrics.LeaderboardCache(metrics.CacheMiss)
	}

	rows, err = s.store.WindowTop(ctx, since, s.opts.Size)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, rows, s.opts.CacheTTL); err != nil {
		log.WithError(err).Warn("Не удалось сохранить рейтинг в кэш")
	}
	return rows, nil
}
