package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Subscriber consumes the /api/ws/feed stream and decodes feed events.
type Subscriber struct {
	conn   *websocket.Conn
	events chan Event
}

// Subscribe connects to the feed stream of the API at baseURL. The returned
// Subscriber's Events channel closes when ctx is cancelled or the connection
// drops. token may be empty; the feed is public.
func Subscribe(ctx context.Context, baseURL, token string) (*Subscriber, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/api/ws/feed"

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	s := &Subscriber{
		conn:   conn,
		events: make(chan Event, 64),
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(s.events)
		defer func() { _ = conn.Close() }()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				continue
			}
			select {
			case s.events <- ev:
			default:
				// Drop rather than block the read loop; the view re-syncs on
				// the next full fetch.
			}
		}
	}()

	return s, nil
}

// Events returns the decoded event stream.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Close tears the connection down.
func (s *Subscriber) Close() error {
	return s.conn.Close()
}
