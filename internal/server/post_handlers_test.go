package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	token := signupUser(t, app, "alice")

	t.Run("requires authentication", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]string{
			"content": "hello",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("creates a post with author and zero counts", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"content": "first post",
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "first post", body["content"])
		assert.EqualValues(t, 0, body["likes_count"])
		assert.EqualValues(t, 0, body["comments_count"])

		author, ok := body["author"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "alice", author["username"])
	})

	t.Run("rejects content over the character limit", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"content": strings.Repeat("a", 281),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects whitespace-only content", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]string{
			"content": "   \n ",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetPostsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	bob := signupUser(t, app, "bob")

	createPost(t, app, alice, "from alice")
	createPost(t, app, bob, "from bob")

	t.Run("anonymous viewers can read the feed newest first", func(t *testing.T) {
		resp, posts := doJSONList(t, app, http.MethodGet, "/api/posts", "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, posts, 2)
		assert.Equal(t, "from bob", posts[0]["content"])
		assert.Equal(t, "from alice", posts[1]["content"])
	})

	t.Run("following filter requires authentication", func(t *testing.T) {
		resp, _ := doJSONList(t, app, http.MethodGet, "/api/posts?feed=following", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("following filter shows only followed authors", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/profiles/bob/follow", alice,
			map[string]bool{"following": false})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, posts := doJSONList(t, app, http.MethodGet, "/api/posts?feed=following", alice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, posts, 1)
		assert.Equal(t, "from bob", posts[0]["content"])
	})
}

func TestLikePostEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	bob := signupUser(t, app, "bob")
	postID := createPost(t, app, alice, "likeable")

	path := postPath(postID) + "/like"

	t.Run("requires authentication", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, path, "", map[string]bool{"liked": false})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("pre-state false inserts a like", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, path, bob, map[string]bool{"liked": false})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, body["likes_count"])
		assert.Equal(t, true, body["user_has_liked_post"])
	})

	t.Run("stale pre-state false does not double-apply", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, path, bob, map[string]bool{"liked": false})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, body["likes_count"])
	})

	t.Run("pre-state true removes the like", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, path, bob, map[string]bool{"liked": true})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 0, body["likes_count"])
		assert.Equal(t, false, body["user_has_liked_post"])
	})

	t.Run("missing post returns 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/9999/like", bob, map[string]bool{"liked": false})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeletePostEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	bob := signupUser(t, app, "bob")
	postID := createPost(t, app, alice, "mine")

	t.Run("non-owner gets 403", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, postPath(postID), bob, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner deletes the post", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodDelete, postPath(postID), alice, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, postPath(postID), "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
