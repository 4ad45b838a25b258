package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/metrics"
)

func TestRank(t *testing.T) {
	rows := []Row{
		{UserID: 30, CarbonSaved: 3.2, Items: 10},
		{UserID: 40, CarbonSaved: 0, Items: 0},
		{UserID: 10, CarbonSaved: 5.0, Items: 4},
		{UserID: 20, CarbonSaved: 3.2, Items: 7},
	}

	entries := Rank(rows)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Rank: 1, Row: rows[2]}, entries[0])
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(20), entries[1].UserID)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, int64(30), entries[2].UserID)

	assert.Equal(t, 0, FindRank(entries, 40))
	assert.Equal(t, 3, FindRank(entries, 30))
}

func TestTop(t *testing.T) {
	entries := Rank([]Row{{UserID: 1, Items: 1}, {UserID: 2, Items: 1}, {UserID: 3, Items: 1}})
	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 10), 3)
	assert.Len(t, Top(entries, 0), 3)
}

func TestRankFromStanding(t *testing.T) {
	assert.Equal(t, 1, RankFromStanding(Standing{Greater: 0}))
	assert.Equal(t, 52, RankFromStanding(Standing{Greater: 51}))
}

func TestCacheKey(t *testing.T) {
	ws := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ecobot:leaderboard:2026-03-09", CacheKey(ws))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) WindowTop(ctx context.Context, since time.Time, limit int) ([]Row, error) {
	args := m.Called(ctx, since, limit)
	if v := args.Get(0); v != nil {
		return v.([]Row), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Standing(ctx context.Context, since time.Time, userID int64) (*Standing, error) {
	args := m.Called(ctx, since, userID)
	if v := args.Get(0); v != nil {
		return v.(*Standing), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]Row, bool, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]Row), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, rows []Row, ttl time.Duration) error {
	return m.Called(ctx, key, rows, ttl).Error(0)
}

func (m *mockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type countingRecorder struct {
	results map[string]int
}

func (r *countingRecorder) LeaderboardCache(result string) {
	if r.results == nil {
		r.results = map[string]int{}
	}
	r.results[result]++
}

// среда, 11 марта 2026 → окно с понедельника 9 марта
var wednesday = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func newTestService(store Store, cache Cache, rec CacheRecorder) *Service {
	s := NewService(store, cache, rec, Options{Size: 2, CacheTTL: time.Minute, Location: time.UTC})
	s.now = func() time.Time { return wednesday }
	return s
}

func TestGetLeaderboard(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{UserID: 10, DisplayName: "Аня", CarbonSaved: 5.0, Items: 4},
		{UserID: 20, DisplayName: "Боря", CarbonSaved: 3.2, Items: 7},
	}

	t.Run("Caller in top, cache hit", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockCache)
		rec := &countingRecorder{}
		cache.On("Get", ctx, "ecobot:leaderboard:2026-03-09").Return(rows, true, nil)

		board, err := newTestService(store, cache, rec).GetLeaderboard(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, monday, board.WeekStart)
		require.Len(t, board.Entries, 2)
		require.NotNil(t, board.CallerRank)
		assert.Equal(t, 2, *board.CallerRank)
		assert.Equal(t, 1, rec.results[metrics.CacheHit])
		store.AssertNotCalled(t, "WindowTop", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Standing", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Caller outside top, cache miss", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockCache)
		rec := &countingRecorder{}
		cache.On("Get", ctx, mock.Anything).Return(nil, false, nil)
		cache.On("Set", ctx, "ecobot:leaderboard:2026-03-09", rows, time.Minute).Return(nil)
		store.On("WindowTop", ctx, monday, 2).Return(rows, nil)
		store.On("Standing", ctx, monday, int64(30)).Return(&Standing{CarbonSaved: 3.2, Greater: 1}, nil)

		board, err := newTestService(store, cache, rec).GetLeaderboard(ctx, 30)
		require.NoError(t, err)
		require.NotNil(t, board.CallerRank)
		assert.Equal(t, 2, *board.CallerRank)
		assert.Equal(t, 1, rec.results[metrics.CacheMiss])
		cache.AssertExpectations(t)
	})

	t.Run("Caller with no items this week", func(t *testing.T) {
		store := new(mockStore)
		store.On("WindowTop", ctx, monday, 2).Return(rows, nil)
		store.On("Standing", ctx, monday, int64(40)).Return(&Standing{CarbonSaved: 0, Greater: 3}, nil)

		board, err := newTestService(store, nil, nil).GetLeaderboard(ctx, 40)
		require.NoError(t, err)
		require.NotNil(t, board.CallerRank)
		assert.Equal(t, 4, *board.CallerRank)
	})

	t.Run("Caller with no standing ranks after all participants", func(t *testing.T) {
		three := []Row{
			{UserID: 10, CarbonSaved: 5.0, Items: 4},
			{UserID: 20, CarbonSaved: 3.2, Items: 7},
			{UserID: 30, CarbonSaved: 3.2, Items: 2},
		}
		store := new(mockStore)
		store.On("WindowTop", ctx, monday, 2).Return(three, nil)
		store.On("Standing", ctx, monday, int64(99)).Return(nil, nil)

		board, err := newTestService(store, nil, nil).GetLeaderboard(ctx, 99)
		require.NoError(t, err)
		require.Len(t, board.Entries, 2)
		require.NotNil(t, board.CallerRank)
		assert.Equal(t, 4, *board.CallerRank)
	})

	t.Run("Redis failure falls back to database", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockCache)
		rec := &countingRecorder{}
		cache.On("Get", ctx, mock.Anything).Return(nil, false, assert.AnError)
		cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
		store.On("WindowTop", ctx, monday, 2).Return(rows, nil)

		board, err := newTestService(store, cache, rec).GetLeaderboard(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, *board.CallerRank)
		assert.Equal(t, 1, rec.results[metrics.CacheError])
	})

	t.Run("Database failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("WindowTop", ctx, monday, 2).Return(nil, assert.AnError)

		_, err := newTestService(store, nil, nil).GetLeaderboard(ctx, 10)
		assert.ErrorIs(t, err, common.ErrStorage)
	})
}

func TestWarm(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	store := new(mockStore)
	cache := new(mockCache)
	store.On("WindowTop", ctx, monday, 2).Return([]Row{}, nil)
	cache.On("Set", ctx, "ecobot:leaderboard:2026-03-09", []Row{}, time.Minute).Return(nil)

	require.NoError(t, newTestService(store, cache, &countingRecorder{}).Warm(ctx))
	cache.AssertExpectations(t)

	assert.NoError(t, newTestService(store, nil, nil).Warm(ctx))
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes current week", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Del", ctx, "ecobot:leaderboard:2026-03-09").Return(nil)
		newTestService(new(mockStore), cache, &countingRecorder{}).Invalidate(ctx)
		cache.AssertExpectations(t)
	})

	t.Run("Redis failure is swallowed", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Del", ctx, mock.Anything).Return(assert.AnError)
		assert.NotPanics(t, func() {
			newTestService(new(mockStore), cache, &countingRecorder{}).Invalidate(ctx)
		})
	})

	t.Run("No cache", func(t *testing.T) {
		assert.NotPanics(t, func() { newTestService(new(mockStore), nil, nil).Invalidate(ctx) })
	})
}

func TestFormatBoard(t *testing.T) {
	board := &Board{
		WeekStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Entries:   Rank([]Row{{UserID: 10, DisplayName: "Аня", CarbonSaved: 5, Items: 4}}),
	}
	text := FormatBoard(board, 10)
	assert.Contains(t, text, "09.03.2026")
	assert.Contains(t, text, "🥇 Аня")
	assert.Contains(t, text, "← вы")
	assert.Contains(t, text, "Вас нет в рейтинге")

	empty := FormatBoard(&Board{WeekStart: board.WeekStart}, 10)
	assert.Contains(t, empty, "Пока никто")
}
