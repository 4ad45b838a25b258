package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1), "третий запрос в окне")
	assert.True(t, rl.Allow(2), "лимит у каждого свой")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow(1), "окно сдвинулось")

	now = now.Add(2 * time.Minute)
	rl.cleanup()
	assert.Equal(t, 0, rl.Tracked())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "абв", truncate("абв", 5))
	assert.Equal(t, "аб...", truncate("абвгд", 2))
}

func TestRecoverFromPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverFromPanic(1)
		panic("boom")
	})
}
