package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/ecobot/internal/config"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name    string
		text    string
		cmd     string
		args    []string
		command bool
	}{
		{"slash", "/log plastic 3", "log", []string{"plastic", "3"}, true},
		{"bang", "!top", "top", nil, true},
		{"dot", ".history 2", "history", []string{"2"}, true},
		{"bot mention", "/stats@ecobot", "stats", nil, true},
		{"upper case", "/LOG glass 1", "log", []string{"glass", "1"}, true},
		{"russian alias", "!сдать пластик 5", "log", []string{"пластик", "5"}, true},
		{"alias yo", "!огонёк", "streak", nil, true},
		{"spaces", "  /  undo   12 ", "undo", []string{"12"}, true},
		{"plain text", "привет", "", nil, false},
		{"prefix only", "!", "", nil, false},
		{"mention only", "/@ecobot", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.command, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

type recordingMessenger struct {
	sent map[int64][]string
}

func (m *recordingMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	if m.sent == nil {
		m.sent = map[int64][]string{}
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func TestDispatch(t *testing.T) {
	out := &recordingMessenger{}
	cfg := &config.Config{BotMaxInflight: 4, RateLimitRequests: 10, RateLimitWindow: time.Minute}
	b := New(nil, out, cfg, nil, Handlers{})
	defer b.rateLimiter.Close()

	ctx := context.Background()
	b.dispatch(ctx, 5, 5, true, "/help")
	require.Len(t, out.sent[5], 1)
	assert.Contains(t, out.sent[5][0], "/log")

	b.dispatch(ctx, 5, 5, true, "!помощь")
	assert.Len(t, out.sent[5], 2)

	b.dispatch(ctx, 5, 5, true, "просто текст")
	b.dispatch(ctx, 5, 5, true, "/unknown")
	assert.Len(t, out.sent[5], 2)
}
