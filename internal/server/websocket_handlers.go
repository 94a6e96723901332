package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedWebsocketHandler returns the handler for GET /api/ws/feed. The feed
// stream is public; an authenticated connection only tags the client for
// logging. Events flow one way, server to client.
func (s *Server) FeedWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		var uid uint
		if v, ok := conn.Locals("userID").(uint); ok {
			uid = v
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("feed websocket: failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
