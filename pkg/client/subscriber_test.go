package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	sent := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ws/feed", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		for i, ev := range []Event{
			{Type: EventPostCreated, Origin: "o1", Payload: json.RawMessage(`{"post":{"id":1}}`)},
			{Type: EventPostDeleted, Origin: "o2", Payload: json.RawMessage(`{"post_id":1}`)},
		} {
			require.NoError(t, conn.WriteJSON(ev))
			if i == 1 {
				close(sent)
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := Subscribe(ctx, server.URL, "")
	require.NoError(t, err)

	<-sent

	first := <-sub.Events()
	assert.Equal(t, EventPostCreated, first.Type)
	assert.Equal(t, "o1", first.Origin)

	second := <-sub.Events()
	assert.Equal(t, EventPostDeleted, second.Type)

	cancel()
	select {
	case _, open := <-sub.Events():
		assert.False(t, open, "events channel closes on cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after cancel")
	}
}

func TestSubscriberFeedsFeedView(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		_ = conn.WriteJSON(Event{
			Type: EventPostCreated, Origin: "other",
			Payload: json.RawMessage(`{"post":{"id":42,"content":"live"}}`),
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := Subscribe(ctx, server.URL, "")
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	view := NewFeedView("me", nil)
	select {
	case ev := <-sub.Events():
		view.Apply(ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	posts := view.Posts()
	require.Len(t, posts, 1)
	assert.EqualValues(t, 42, posts[0].ID)
	assert.Equal(t, "live", posts[0].Content)
}
