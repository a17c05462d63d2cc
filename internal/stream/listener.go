// Package stream subscribes to the microblog status stream and feeds tagged
// statuses to the reverse pipeline.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bioenergetic/forum-bridge/internal/domain"
)

const reconnectDelay = 5 * time.Second

// Handler processes one tagged status.
type Handler func(ctx context.Context, status domain.Status) error

// Listener connects to the status stream and hands every valid status
// mentioning the bot handle to the handler. Events are processed one at a
// time.
type Listener struct {
	url     string
	handle  string
	handler Handler
	logger  *slog.Logger
}

// NewListener creates a stream listener tracking the given bot handle
// (including the leading @).
func NewListener(streamURL, handle string, handler Handler, logger *slog.Logger) *Listener {
	return &Listener{
		url:     streamURL,
		handle:  handle,
		handler: handler,
		logger:  logger,
	}
}

// Start connects to the stream and processes events until the context is
// cancelled. It reconnects on transient errors after a fixed delay.
func (l *Listener) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := l.subscribe(ctx); err != nil {
				l.logger.Error("stream connection error, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
				}
			}
		}
	}
}

func (l *Listener) buildURL() string {
	u, _ := url.Parse(l.url)
	q := u.Query()
	q.Set("track", l.handle)
	u.RawQuery = q.Encode()
	return u.String()
}

func (l *Listener) subscribe(ctx context.Context) error {
	wsURL := l.buildURL()
	l.logger.Info("connecting to status stream", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	l.logger.Info("connected to status stream")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		status, err := parseStatus(message)
		if err != nil {
			l.logger.Error("failed to parse status event", "error", err)
			continue
		}

		if !strings.Contains(status.Text, l.handle) {
			continue
		}

		l.logger.Info("tagged status received", "status", status.ID, "author", status.Author)
		if err := l.handler(ctx, status); err != nil {
			l.logger.Error("failed to mirror thread", "status", status.ID, "error", err)
		}
	}
}
