package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	bob := signupUser(t, app, "bob")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/profiles/alice/follow", bob,
		map[string]bool{"following": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("returns counts and hides the email", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/profiles/alice", "", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
		assert.EqualValues(t, 1, body["followers_count"])
		assert.EqualValues(t, 0, body["following_count"])
		assert.Nil(t, body["email"])
	})

	t.Run("viewer-relative following flag", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/profiles/alice", bob, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["following"])

		resp, body = doJSON(t, app, http.MethodGet, "/api/profiles/alice", alice, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["following"])
	})

	t.Run("unknown username returns 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/profiles/nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMeEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")

	t.Run("requires authentication", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("returns the owner profile with email", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/me", alice, nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])
	})

	t.Run("updates bio and full name", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/api/me", alice, map[string]string{
			"full_name": "Alice Waters",
			"bio":       "gardener",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Alice Waters", body["full_name"])
		assert.Equal(t, "gardener", body["bio"])
	})

	t.Run("rejects an over-limit bio", func(t *testing.T) {
		long := make([]byte, 161)
		for i := range long {
			long[i] = 'b'
		}
		resp, _ := doJSON(t, app, http.MethodPut, "/api/me", alice, map[string]string{
			"bio": string(long),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestFollowToggleEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	signupUser(t, app, "bob")

	t.Run("pre-state false follows", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/profiles/bob/follow", alice,
			map[string]bool{"following": false})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["following"])
		assert.EqualValues(t, 1, body["followers_count"])
	})

	t.Run("stale pre-state false does not double-apply", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/profiles/bob/follow", alice,
			map[string]bool{"following": false})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, body["followers_count"])
	})

	t.Run("pre-state true unfollows", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/profiles/bob/follow", alice,
			map[string]bool{"following": true})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["following"])
		assert.EqualValues(t, 0, body["followers_count"])
	})

	t.Run("self-follow is rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/profiles/alice/follow", alice,
			map[string]bool{"following": false})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "You cannot follow yourself", body["error"])
	})

	t.Run("unknown target returns 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/profiles/nobody/follow", alice,
			map[string]bool{"following": false})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestFollowListingsAndSuggested(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signupUser(t, app, "alice")
	signupUser(t, app, "bob")
	signupUser(t, app, "carol")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/profiles/bob/follow", alice,
		map[string]bool{"following": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("followers and following listings", func(t *testing.T) {
		resp, followers := doJSONList(t, app, http.MethodGet, "/api/profiles/bob/followers", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, followers, 1)
		assert.Equal(t, "alice", followers[0]["username"])

		resp, following := doJSONList(t, app, http.MethodGet, "/api/profiles/alice/following", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, following, 1)
		assert.Equal(t, "bob", following[0]["username"])
	})

	t.Run("suggested excludes self and already-followed", func(t *testing.T) {
		resp, suggested := doJSONList(t, app, http.MethodGet, "/api/profiles/suggested", alice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, suggested, 1)
		assert.Equal(t, "carol", suggested[0]["username"])
	})

	t.Run("suggested requires authentication", func(t *testing.T) {
		resp, _ := doJSONList(t, app, http.MethodGet, "/api/profiles/suggested", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
