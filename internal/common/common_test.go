package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "предметов"},
		{1, "предмет"},
		{2, "предмета"},
		{4, "предмета"},
		{5, "предметов"},
		{11, "предметов"},
		{12, "предметов"},
		{21, "предмет"},
		{22, "предмета"},
		{111, "предметов"},
		{-3, "предмета"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, PluralizeItems(tt.n))
		})
	}
	assert.Equal(t, "дня", PluralizeDays(3))
	assert.Equal(t, "очков", PluralizePoints(15))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 005", FormatNumber(1000005))
	assert.Equal(t, "-1 500", FormatNumber(-1500))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "1,28", FormatDecimal(1.2782, 2))
	assert.Equal(t, "5,6", FormatDecimal(5.6, 1))
}

func TestWeekStart(t *testing.T) {
	loc := time.UTC
	// 2024-05-15: среда
	wed := time.Date(2024, 5, 15, 18, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, loc), WeekStart(wed, loc))

	// воскресенье относится к неделе, начавшейся в понедельник
	sun := time.Date(2024, 5, 19, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, loc), WeekStart(sun, loc))

	mon := time.Date(2024, 5, 13, 0, 0, 1, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, loc), WeekStart(mon, loc))
}

func TestDateIn(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC: это уже следующий день по Москве
	utc := time.Date(2024, 5, 15, 22, 30, 0, 0, time.UTC)
	d := DateIn(utc, msk)
	assert.Equal(t, 16, d.Day())
	assert.True(t, SameDate(d, time.Date(2024, 5, 16, 12, 0, 0, 0, msk)))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewValidationError("material", ErrInvalidMaterial, "Выберите материал из списка"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrInvalidMaterial))
	assert.False(t, errors.Is(err, ErrInvalidQuantity))
	assert.Equal(t, "Выберите материал из списка", UserMessage(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Такой записи нет (или она не ваша)", UserMessage(fmt.Errorf("x: %w", ErrEventNotFound)))
	assert.True(t, errors.Is(ErrCompanionLocked, ErrForbidden))

	storage := StorageError("append", errors.New("connection reset"))
	assert.True(t, errors.Is(storage, ErrStorage))
	assert.Equal(t, "Что-то пошло не так, попробуйте позже", UserMessage(storage))
	assert.NotContains(t, UserMessage(storage), "connection reset")
}
