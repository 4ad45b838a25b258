package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/ecobot/internal/config"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvance(t *testing.T) {
	t.Run("First log starts a streak", func(t *testing.T) {
		s, tr := Advance(State{}, day(10))
		assert.Equal(t, Reset, tr)
		assert.Equal(t, 1, s.Current)
		assert.Equal(t, 1, s.Best)
		require.NotNil(t, s.LastLogDate)
		assert.Equal(t, 10, s.LastLogDate.Day())
	})

	t.Run("Next day extends", func(t *testing.T) {
		s, _ := Advance(State{}, day(10))
		s, tr := Advance(s, day(11))
		assert.Equal(t, Extended, tr)
		assert.Equal(t, 2, s.Current)
		assert.Equal(t, 2, s.Best)
	})

	t.Run("Same day twice keeps", func(t *testing.T) {
		s, _ := Advance(State{}, day(10))
		s, _ = Advance(s, day(11))
		before := s.Current
		s, tr := Advance(s, day(11))
		assert.Equal(t, Kept, tr)
		assert.Equal(t, before, s.Current)
		s, tr = Advance(s, day(11))
		assert.Equal(t, Kept, tr)
		assert.Equal(t, before, s.Current)
	})

	t.Run("Gap resets to one and keeps best", func(t *testing.T) {
		last := day(10)
		s, tr := Advance(State{Current: 5, Best: 7, LastLogDate: &last}, day(13))
		assert.Equal(t, Reset, tr)
		assert.Equal(t, 1, s.Current)
		assert.Equal(t, 7, s.Best)
	})

	t.Run("Month boundary extends", func(t *testing.T) {
		last := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
		s, tr := Advance(State{Current: 3, Best: 3, LastLogDate: &last}, day(1))
		assert.Equal(t, Extended, tr)
		assert.Equal(t, 4, s.Current)
	})

	t.Run("Best never decreases", func(t *testing.T) {
		dates := []int{1, 2, 3, 3, 7, 8, 20, 21, 22, 23, 23}
		s := State{}
		prevBest := 0
		for _, d := range dates {
			s, _ = Advance(s, day(d))
			assert.GreaterOrEqual(t, s.Best, prevBest)
			assert.GreaterOrEqual(t, s.Best, s.Current)
			prevBest = s.Best
		}
		assert.Equal(t, 4, s.Best)
	})
}

func TestDisplay(t *testing.T) {
	last := day(10)
	s := State{Current: 4, Best: 6, LastLogDate: &last}

	assert.Equal(t, 4, s.Display(day(10)))
	assert.Equal(t, 4, s.Display(day(11)))
	assert.Equal(t, 0, s.Display(day(12)))
	assert.True(t, s.LoggedOn(day(10)))
	assert.False(t, s.LoggedOn(day(11)))
	assert.False(t, State{}.Alive(day(10)))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetState(ctx context.Context, userID int64) (*State, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*State), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ReminderCandidates(ctx context.Context, minStreak int, today time.Time) ([]Candidate, error) {
	args := m.Called(ctx, minStreak, today)
	if v := args.Get(0); v != nil {
		return v.([]Candidate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) MarkReminderSent(ctx context.Context, userID int64, today time.Time) error {
	return m.Called(ctx, userID, today).Error(0)
}

func newTestService(store Store, now time.Time) *Service {
	cfg := &config.Config{AppTimezone: "UTC", StreakReminderThreshold: 3, StreakReminderHour: 18}
	s := NewService(store, cfg)
	s.now = func() time.Time { return now }
	return s
}

func TestSendReminders(t *testing.T) {
	t.Run("Too early does nothing", func(t *testing.T) {
		store := new(mockStore)
		s := newTestService(store, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

		err := s.SendReminders(context.Background(), func(context.Context, int64, string) error {
			t.Fatal("send must not be called")
			return nil
		})
		assert.NoError(t, err)
		store.AssertNotCalled(t, "ReminderCandidates", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Sends and marks", func(t *testing.T) {
		store := new(mockStore)
		today := day(10)
		store.On("ReminderCandidates", mock.Anything, 3, today).Return([]Candidate{
			{UserID: 1, Current: 5},
			{UserID: 2, Current: 3},
		}, nil)
		store.On("MarkReminderSent", mock.Anything, int64(1), today).Return(nil)

		s := newTestService(store, time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC))

		var sentTo []int64
		err := s.SendReminders(context.Background(), func(_ context.Context, userID int64, text string) error {
			if userID == 2 {
				return errors.New("bot blocked by user")
			}
			sentTo = append(sentTo, userID)
			assert.Contains(t, text, "5 дней")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, sentTo)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "MarkReminderSent", mock.Anything, int64(2), mock.Anything)
	})
}
