// Package notifications provides real-time feed event delivery.
package notifications

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis pub/sub channel carrying feed events.
const FeedChannel = "feed:events"

// Notifier publishes feed events into Redis so every server instance can fan
// them out to its local websocket connections.
type Notifier struct {
	rdb *redis.Client

	// localFanout delivers events directly when Redis is unavailable, so a
	// single-instance deployment keeps working without it.
	localFanout func(payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// SetLocalFanout registers the delivery path used when Redis is absent.
func (n *Notifier) SetLocalFanout(fn func(payload string)) {
	n.localFanout = fn
}

// PublishFeed sends a feed event payload to every subscriber.
func (n *Notifier) PublishFeed(ctx context.Context, payload string) error {
	if n.rdb == nil {
		if n.localFanout != nil {
			n.localFanout(payload)
		}
		return nil
	}
	return n.rdb.Publish(ctx, FeedChannel, payload).Err()
}

// StartFeedSubscriber subscribes to the feed channel and calls onMessage for
// each incoming event payload. It returns immediately; delivery runs in a
// background goroutine until ctx is cancelled.
func (n *Notifier) StartFeedSubscriber(
	ctx context.Context, onMessage func(payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in FeedSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
