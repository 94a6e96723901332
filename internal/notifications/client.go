package notifications

import (
	"time"

	"ripple/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait bounds a single frame write to a slow peer.
	writeWait = 10 * time.Second

	// pongWait is how long a subscriber may stay silent before the
	// connection is considered dead. Pings go out at pingPeriod.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The feed is broadcast-only, so inbound frames are control traffic at
	// most. Anything larger is a misbehaving client.
	maxInboundSize = 512

	// sendBuffer is sized for bursts of feed events. When it overflows the
	// subscriber is told to re-fetch rather than queue unbounded.
	sendBuffer = 64
)

// Client is one websocket feed subscription. Outbound events go through Send;
// the feed never carries client-to-server messages.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// Send is the buffered outbound event queue, drained by WritePump.
	Send chan []byte

	// UserID is zero for anonymous subscribers.
	UserID uint
}

// NewClient wraps a websocket connection as a feed subscriber.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump drains the connection until it dies. The feed has no inbound
// protocol; reading only services pings, pongs and close frames soon enough
// to notice a gone peer.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Error(c.UserID, err, "read")
			}
			return
		}
	}
}

// WritePump serializes all writes to the connection: queued feed events and
// the keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues an event without ever blocking the fan-out loop. When the
// subscriber's buffer is full the event is dropped and a drop notice is
// queued instead, telling the client to re-fetch the feed to close the gap.
func (c *Client) TrySend(event []byte) {
	defer func() {
		// Recovers a send on a queue the hub already closed.
		if r := recover(); r != nil {
			middleware.FeedBackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- event:
	default:
		middleware.FeedBackpressureDrops.WithLabelValues("full").Inc()
		c.Hub.log.Error(c.UserID, errBufferFull, "send")

		notice := []byte(`{"type":"events_dropped","payload":{"reason":"buffer_full"}}`)
		select {
		case c.Send <- notice:
		default:
		}
	}
}
