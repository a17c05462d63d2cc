package stream

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

func TestParseStatus(t *testing.T) {
	t.Run("decodes a stream event", func(t *testing.T) {
		data := []byte(`{
			"id": 42,
			"user": {"screen_name": "fan", "name": "A Fan"},
			"text": "@mybot mirror this",
			"created_at": "Thu Mar 04 10:30:00 +0000 2021",
			"in_reply_to_status_id": 10
		}`)

		got, err := parseStatus(data)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
		assert.Equal(t, "fan", got.Author)
		assert.Equal(t, "@mybot mirror this", got.Text)
		assert.Equal(t, int64(10), got.InReplyToStatusID)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := parseStatus([]byte("not json"))
		assert.Error(t, err)
	})

	t.Run("rejects an event without text", func(t *testing.T) {
		_, err := parseStatus([]byte(`{"id": 1, "created_at": "Thu Mar 04 10:30:00 +0000 2021"}`))
		assert.ErrorIs(t, err, domain.ErrNoText)
	})
}

func TestBuildURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("adds the track parameter", func(t *testing.T) {
		l := NewListener("wss://stream.example/statuses", "@mybot", nil, logger)
		assert.Equal(t, "wss://stream.example/statuses?track=%40mybot", l.buildURL())
	})

	t.Run("keeps existing query parameters", func(t *testing.T) {
		l := NewListener("wss://stream.example/statuses?lang=en", "@mybot", nil, logger)
		got := l.buildURL()
		assert.Contains(t, got, "lang=en")
		assert.Contains(t, got, "track=%40mybot")
	})
}
