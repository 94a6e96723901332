package server

import (
	"context"
	"encoding/json"
	"log"

	"ripple/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated         = "post_created"
	EventPostReactionUpdated = "post_reaction_updated"
	EventPostDeleted         = "post_deleted"
	EventCommentCreated      = "comment_created"
)

// OriginHeader carries the client-generated mutation origin tag. It is echoed
// back on the resulting feed event so the originating client can suppress the
// broadcast copy of a change it already applied optimistically.
const OriginHeader = "X-Mutation-Origin"

// publishFeedEvent broadcasts a feed event to every connected subscriber,
// across instances when Redis is available.
func (s *Server) publishFeedEvent(c *fiber.Ctx, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"origin":  c.Get(OriginHeader),
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}

	middleware.FeedEventsPublished.WithLabelValues(eventType).Inc()

	if err := s.notifier.PublishFeed(context.Background(), string(eventJSON)); err != nil {
		log.Printf("failed to publish %s feed event: %v", eventType, err)
	}
}
