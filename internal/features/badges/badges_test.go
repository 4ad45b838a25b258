package badges

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/ecobot/internal/common"
)

func catalog() []Badge {
	return []Badge{
		{ID: 1, Name: "Первый шаг", Criterion: TotalLogs{N: 1}},
		{ID: 2, Name: "Десятка", Criterion: TotalLogs{N: 10}},
		{ID: 3, Name: "Три дня", Criterion: Streak{Days: 3}},
		{ID: 4, Name: "Сотня", Criterion: TotalItems{N: 100}},
		{ID: 5, Name: "Первые 10 кг", Criterion: CarbonSaved{Kg: 10}},
	}
}

func ids(bs []Badge) []int64 {
	var out []int64
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	t.Run("Nothing met", func(t *testing.T) {
		assert.Empty(t, Evaluate(Stats{}, catalog()))
	})

	t.Run("Several at once", func(t *testing.T) {
		got := Evaluate(Stats{TotalLogs: 1, TotalItems: 120, StreakCurrent: 1, CarbonSaved: 1.2}, catalog())
		assert.Equal(t, []int64{1, 4}, ids(got))
	})

	t.Run("Thresholds are inclusive", func(t *testing.T) {
		got := Evaluate(Stats{TotalLogs: 10, TotalItems: 100, StreakCurrent: 3, CarbonSaved: 10}, catalog())
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
	})

	t.Run("Only candidates are considered", func(t *testing.T) {
		candidates := catalog()[1:] // первый значок уже получен
		got := Evaluate(Stats{TotalLogs: 5}, candidates)
		assert.Empty(t, got)
	})

	t.Run("Badge without criterion is skipped", func(t *testing.T) {
		got := Evaluate(Stats{TotalLogs: 100}, []Badge{{ID: 9}})
		assert.Empty(t, got)
	})
}

func TestParseCriterion(t *testing.T) {
	tests := []struct {
		kind      string
		threshold float64
		want      Criterion
	}{
		{"total_logs", 10, TotalLogs{N: 10}},
		{"streak", 7, Streak{Days: 7}},
		{"total_items", 500, TotalItems{N: 500}},
		{"carbon_saved", 2.5, CarbonSaved{Kg: 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			c, err := ParseCriterion(tt.kind, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, Kind(tt.kind), c.Kind())
			assert.Equal(t, tt.threshold, c.Threshold())
		})
	}

	_, err := ParseCriterion("karma", 1)
	assert.Error(t, err)
	_, err = ParseCriterion("streak", -1)
	assert.Error(t, err)
}

func TestRequirement(t *testing.T) {
	assert.Equal(t, "огонёк 7 дней подряд", Requirement(Streak{Days: 7}))
	assert.Equal(t, "сдать 100 предметов", Requirement(TotalItems{N: 100}))
	assert.Equal(t, "сэкономить 2,5 кг CO₂", Requirement(CarbonSaved{Kg: 2.5}))
	assert.Equal(t, "особое условие", Requirement(nil))
}

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListForUser(ctx context.Context, userID int64) ([]View, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]View), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGetBadges(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		earned := time.Now()
		repo := new(mockLister)
		repo.On("ListForUser", mock.Anything, int64(5)).Return([]View{
			{Badge: catalog()[0], Earned: true, EarnedAt: &earned},
			{Badge: catalog()[1]},
		}, nil)

		views, err := NewService(repo).GetBadges(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, views, 2)
		assert.Equal(t, 1, CountEarned(views))
		repo.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		repo := new(mockLister)
		repo.On("ListForUser", mock.Anything, int64(5)).Return(nil, assert.AnError)

		_, err := NewService(repo).GetBadges(context.Background(), 5)
		assert.True(t, errors.Is(err, common.ErrStorage))
	})
}

func TestFormatNew(t *testing.T) {
	assert.Equal(t, "", FormatNew(nil))
	text := FormatNew([]Badge{{Emoji: "🌱", Name: "Первый шаг"}})
	assert.Contains(t, text, "🌱 Первый шаг")
}
