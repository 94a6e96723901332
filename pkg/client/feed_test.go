package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvent(t *testing.T, eventType, origin string, payload interface{}) Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Event{Type: eventType, Origin: origin, Payload: raw}
}

func TestFeedViewInsertPrepends(t *testing.T) {
	v := NewFeedView("me", []Post{{ID: 1, Content: "old"}})

	v.Apply(mustEvent(t, EventPostCreated, "someone-else", map[string]interface{}{
		"post": Post{ID: 2, Content: "new"},
	}))

	posts := v.Posts()
	require.Len(t, posts, 2)
	assert.EqualValues(t, 2, posts[0].ID, "insertion is always at the head")
	assert.EqualValues(t, 1, posts[1].ID)
}

func TestFeedViewUpdateSplicesInPlace(t *testing.T) {
	v := NewFeedView("me", []Post{
		{ID: 3, Content: "top"},
		{ID: 2, Content: "middle", LikesCount: 1},
		{ID: 1, Content: "bottom"},
	})

	v.Apply(mustEvent(t, EventPostReactionUpdated, "someone-else", map[string]interface{}{
		"post_id":        2,
		"likes_count":    7,
		"comments_count": 3,
	}))

	posts := v.Posts()
	require.Len(t, posts, 3)
	assert.EqualValues(t, 2, posts[1].ID, "position unchanged")
	assert.EqualValues(t, 7, posts[1].LikesCount)
	assert.EqualValues(t, 3, posts[1].CommentsCount)
	assert.Equal(t, "middle", posts[1].Content, "unrelated fields untouched")
}

func TestFeedViewCommentEventBumpsCount(t *testing.T) {
	v := NewFeedView("me", []Post{{ID: 1}})

	v.Apply(mustEvent(t, EventCommentCreated, "someone-else", map[string]interface{}{
		"post_id":        1,
		"comments_count": 4,
	}))

	assert.EqualValues(t, 4, v.Posts()[0].CommentsCount)
}

func TestFeedViewDeleteRemoves(t *testing.T) {
	v := NewFeedView("me", []Post{{ID: 2}, {ID: 1}})

	v.Apply(mustEvent(t, EventPostDeleted, "someone-else", map[string]interface{}{
		"post_id": 2,
	}))

	posts := v.Posts()
	require.Len(t, posts, 1)
	assert.EqualValues(t, 1, posts[0].ID)
}

func TestFeedViewDropsSelfOriginatedEvents(t *testing.T) {
	v := NewFeedView("me", []Post{{ID: 1, LikesCount: 0}})

	// The optimistic layer already applied this change locally; the
	// broadcast copy must not double-apply.
	v.Apply(mustEvent(t, EventPostReactionUpdated, "me", map[string]interface{}{
		"post_id":     1,
		"likes_count": 1,
	}))
	assert.EqualValues(t, 0, v.Posts()[0].LikesCount)

	v.Apply(mustEvent(t, EventPostCreated, "me", map[string]interface{}{
		"post": Post{ID: 9},
	}))
	assert.Equal(t, 1, v.Len())
}

func TestFeedViewIgnoresUnknownPostsAndTypes(t *testing.T) {
	v := NewFeedView("me", []Post{{ID: 1}})

	v.Apply(mustEvent(t, EventPostReactionUpdated, "x", map[string]interface{}{
		"post_id":     999,
		"likes_count": 5,
	}))
	v.Apply(mustEvent(t, EventPostDeleted, "x", map[string]interface{}{
		"post_id": 999,
	}))
	v.Apply(mustEvent(t, "mystery_event", "x", map[string]interface{}{}))

	assert.Equal(t, 1, v.Len())
	assert.EqualValues(t, 0, v.Posts()[0].LikesCount)
}

func TestFeedViewDuplicateInsertIgnored(t *testing.T) {
	v := NewFeedView("me", nil)
	ev := mustEvent(t, EventPostCreated, "x", map[string]interface{}{
		"post": Post{ID: 5},
	})

	v.Apply(ev)
	v.Apply(ev)
	assert.Equal(t, 1, v.Len())
}
