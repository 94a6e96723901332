package client

import (
	"encoding/json"
	"sync"
)

// Event type names as broadcast by the server.
const (
	EventPostCreated         = "post_created"
	EventPostReactionUpdated = "post_reaction_updated"
	EventPostDeleted         = "post_deleted"
	EventCommentCreated      = "comment_created"
)

// Event is a realtime feed event.
type Event struct {
	Type    string          `json:"type"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

type eventPayload struct {
	Post          *Post  `json:"post"`
	PostID        uint   `json:"post_id"`
	LikesCount    *int64 `json:"likes_count"`
	CommentsCount *int64 `json:"comments_count"`
}

// FeedView is an exclusively-owned ordered post list reconciled from
// broadcast events. Inserts prepend at the head (creation order is the
// invariant, never re-sorted), updates splice fields in place by ID, deletes
// remove by ID. Events originated by this client are dropped so the
// broadcast copy of a change never double-applies over the optimistic one.
type FeedView struct {
	mu     sync.Mutex
	origin string
	posts  []Post
}

// NewFeedView creates a FeedView over an initial fetch. origin is this
// client's mutation-origin tag; events carrying it are ignored.
func NewFeedView(origin string, initial []Post) *FeedView {
	posts := make([]Post, len(initial))
	copy(posts, initial)
	return &FeedView{origin: origin, posts: posts}
}

// Posts returns a snapshot of the current list, newest first.
func (v *FeedView) Posts() []Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Post, len(v.posts))
	copy(out, v.posts)
	return out
}

// Len returns the number of posts in the view.
func (v *FeedView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.posts)
}

// Apply reconciles one event into the view. Unknown event types and events
// for posts not in the view are no-ops.
func (v *FeedView) Apply(ev Event) {
	if v.origin != "" && ev.Origin == v.origin {
		return
	}

	var payload eventPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Type {
	case EventPostCreated:
		if payload.Post == nil {
			return
		}
		// Duplicate delivery guard.
		for _, p := range v.posts {
			if p.ID == payload.Post.ID {
				return
			}
		}
		v.posts = append([]Post{*payload.Post}, v.posts...)

	case EventPostReactionUpdated, EventCommentCreated:
		for i := range v.posts {
			if v.posts[i].ID != payload.PostID {
				continue
			}
			if payload.LikesCount != nil {
				v.posts[i].LikesCount = *payload.LikesCount
			}
			if payload.CommentsCount != nil {
				v.posts[i].CommentsCount = *payload.CommentsCount
			}
			return
		}

	case EventPostDeleted:
		for i := range v.posts {
			if v.posts[i].ID == payload.PostID {
				v.posts = append(v.posts[:i], v.posts[i+1:]...)
				return
			}
		}
	}
}
