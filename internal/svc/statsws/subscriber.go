// If you are AI: This file implements one stats WebSocket subscriber.
// A reader goroutine detects the peer closing; the writer pushes snapshots on a ticker.

package statsws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"framerelay/internal/core/session"
)

// writeWait bounds each snapshot write.
const writeWait = 5 * time.Second

// Message is one pushed snapshot.
type Message struct {
	Time      int64                  `json:"time"` // Unix milliseconds
	Endpoints []session.EndpointInfo `json:"endpoints"`
}

// Conn defines the WebSocket operations a subscriber needs.
// This allows for easier testing and abstraction.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Subscriber pushes snapshots to one connection.
type Subscriber struct {
	conn     Conn
	registry *session.Registry
	name     string
	interval time.Duration
}

// NewSubscriber creates a subscriber for endpoints named name (all when empty).
func NewSubscriber(conn Conn, registry *session.Registry, name string, interval time.Duration) *Subscriber {
	return &Subscriber{
		conn:     conn,
		registry: registry,
		name:     name,
		interval: interval,
	}
}

// Run pushes a snapshot immediately and then every interval, until the peer
// closes, a write fails or ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	closed := make(chan error, 1)
	go func() {
		for {
			if _, _, err := s.conn.ReadMessage(); err != nil {
				closed <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.push(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-closed:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case <-ticker.C:
		}
	}
}

// push writes one snapshot.
func (s *Subscriber) push() error {
	msg := Message{
		Time:      time.Now().UnixMilli(),
		Endpoints: filter(s.registry.List(), s.name),
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}
