// Package notifications provides real-time feed event delivery.
package notifications

import (
	"context"
	"errors"
	"sync"

	"ripple/internal/middleware"
	"ripple/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max total connections
	maxTotalConns = 10000
)

var errBufferFull = errors.New("send buffer full, event dropped")

// Hub fans feed events out to every connected websocket client. Feed
// subscriptions are public: clients may be anonymous (UserID 0).
type Hub struct {
	mu    sync.RWMutex
	conns map[*Client]struct{}
	log   *observability.WSLogger
}

// NewHub creates a new Hub instance for feed delivery.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*Client]struct{}),
		log:   observability.NewWSLogger("feed", middleware.Logger),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register adds a connection to the hub. Returns the Client or an error if
// the connection limit is exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.conns[client] = struct{}{}
	middleware.FeedSubscribers.Inc()
	h.log.Connect(userID)

	return client, nil
}

// UnregisterClient removes a connection from the hub and closes its send
// queue, which lets WritePump finish with a clean close frame.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[client]; ok {
		delete(h.conns, client)
		close(client.Send)
		middleware.FeedSubscribers.Dec()
		h.log.Disconnect(client.UserID, "closed")
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	_, span := observability.TraceWebSocket(context.Background(), h.Name(), "fanout")
	defer span.End()

	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns {
		c.TrySend(data)
	}
}

// StartWiring connects the Notifier to this hub: feed events published on
// Redis are forwarded to every local connection. With Redis unavailable the
// hub still receives locally published events directly.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	n.SetLocalFanout(h.BroadcastAll)
	return n.StartFeedSubscriber(ctx, func(payload string) {
		h.BroadcastAll(payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.conns {
		close(client.Send)
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			h.log.Error(client.UserID, err, "shutdown")
		}
		if err := client.Conn.Close(); err != nil {
			h.log.Error(client.UserID, err, "shutdown")
		}
	}
	h.conns = make(map[*Client]struct{})
	return nil
}
