package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleOptimisticFlip(t *testing.T) {
	var gotPre bool
	tg := NewToggle(false, 5, func(_ context.Context, pre bool) (ToggleResult, error) {
		gotPre = pre
		return ToggleResult{On: true, Count: 6}, nil
	})

	require.NoError(t, tg.Toggle(context.Background()))
	assert.False(t, gotPre, "remote call must carry the pre-optimistic state")
	assert.Equal(t, IdleOn, tg.State())
	assert.EqualValues(t, 6, tg.Count())
}

func TestToggleOffDirection(t *testing.T) {
	tg := NewToggle(true, 6, func(_ context.Context, pre bool) (ToggleResult, error) {
		assert.True(t, pre)
		return ToggleResult{On: false, Count: 5}, nil
	})

	require.NoError(t, tg.Toggle(context.Background()))
	assert.Equal(t, IdleOff, tg.State())
	assert.EqualValues(t, 5, tg.Count())
}

func TestToggleRollbackOnFailure(t *testing.T) {
	remoteErr := errors.New("network down")
	tg := NewToggle(false, 5, func(_ context.Context, _ bool) (ToggleResult, error) {
		return ToggleResult{}, remoteErr
	})

	err := tg.Toggle(context.Background())
	require.ErrorIs(t, err, remoteErr)
	assert.Equal(t, IdleOff, tg.State(), "state must restore exactly")
	assert.EqualValues(t, 5, tg.Count(), "count must restore exactly")
}

func TestTogglePendingGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	tg := NewToggle(false, 0, func(_ context.Context, _ bool) (ToggleResult, error) {
		close(started)
		<-release
		return ToggleResult{On: true, Count: 1}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tg.Toggle(context.Background())
	}()

	<-started
	assert.Equal(t, PendingTowardOn, tg.State())
	assert.True(t, tg.On(), "optimistic state shows before confirmation")
	assert.EqualValues(t, 1, tg.Count())

	err := tg.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrPending)

	close(release)
	wg.Wait()
	assert.Equal(t, IdleOn, tg.State())
}

func TestToggleRejectsAnonymousBeforeFlip(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.False(t, c.Authenticated())

	tg := NewLikeToggle(c, &Post{ID: 7, Liked: false, LikesCount: 5})

	err := tg.Toggle(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)

	// The trigger is rejected before the optimistic transition: the machine
	// never left idle and there is nothing to roll back.
	assert.Equal(t, IdleOff, tg.State())
	assert.EqualValues(t, 5, tg.Count())
	assert.Zero(t, hits, "no request may leave the client")

	// A rejected trigger does not wedge the machine; a session makes the
	// same control usable again.
	c.SetToken("session-token")
	_ = tg.Toggle(context.Background())
	assert.NotEqual(t, PendingTowardOn, tg.State())
}

func TestFollowToggleRejectsAnonymousBeforeFlip(t *testing.T) {
	c := New("http://127.0.0.1:0")
	tg := NewFollowToggle(c, &Profile{Username: "alice", Following: true, FollowersCount: 9})

	err := tg.Toggle(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, IdleOn, tg.State())
	assert.EqualValues(t, 9, tg.Count())
}

func TestToggleExactCountDelta(t *testing.T) {
	// The optimistic delta is exactly +-1 while pending; the server result
	// is authoritative afterwards.
	var tg *Toggle
	var pendingCount int64
	tg = NewToggle(false, 41, func(_ context.Context, _ bool) (ToggleResult, error) {
		pendingCount = tg.Count()
		return ToggleResult{On: true, Count: 42}, nil
	})

	require.NoError(t, tg.Toggle(context.Background()))
	assert.EqualValues(t, 42, pendingCount)
	assert.EqualValues(t, 42, tg.Count())
}
