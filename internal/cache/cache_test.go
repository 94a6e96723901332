package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	old := client
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(old) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(1), &got)
	assert.NoError(t, err)
	assert.False(t, found)

	want := cachedPost{ID: 1, Content: "hello"}
	require.NoError(t, SetJSON(ctx, PostKey(1), want, PostTTL))

	found, err = GetJSON(ctx, PostKey(1), &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestGetSetJSONNilClient(t *testing.T) {
	old := client
	SetClient(nil)
	t.Cleanup(func() { SetClient(old) })

	ctx := context.Background()
	var got cachedPost
	found, err := GetJSON(ctx, PostKey(1), &got)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(ctx, PostKey(1), cachedPost{ID: 1}, time.Minute))
}

func TestCacheAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 9, Content: "from db"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, CacheAside(ctx, PostKey(9), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from db", first.Content)

	// Second read is served from cache, fetch is not called again
	var second cachedPost
	require.NoError(t, CacheAside(ctx, PostKey(9), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestCacheAsideFetchError(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var dest cachedPost
	wantErr := errors.New("db down")
	err := CacheAside(ctx, PostKey(2), &dest, PostTTL, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	// Nothing cached on fetch failure
	found, err := GetJSON(ctx, PostKey(2), &dest)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCacheAsideRedisDownFallsThrough(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()
	ctx := context.Background()

	calls := 0
	var dest cachedPost
	err := CacheAside(ctx, PostKey(3), &dest, PostTTL, func() error {
		calls++
		dest = cachedPost{ID: 3, Content: "from db"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from db", dest.Content)
}

func TestGetJSONCorruptEntryTreatedAsMiss(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PostKey(4), "not-json{"))

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(4), &got)
	assert.NoError(t, err)
	assert.False(t, found)

	// The corrupt entry is dropped so the next write repopulates cleanly
	assert.False(t, mr.Exists(PostKey(4)))
}

func TestInvalidateFeed(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, FeedKey(1, 20), []cachedPost{{ID: 1}}, FeedTTL))
	require.NoError(t, SetJSON(ctx, FeedKey(2, 20), []cachedPost{{ID: 2}}, FeedTTL))
	require.NoError(t, SetJSON(ctx, ProfileKey("alice"), cachedPost{ID: 3}, ProfileTTL))

	InvalidateFeed(ctx)

	var got []cachedPost
	found, err := GetJSON(ctx, FeedKey(1, 20), &got)
	assert.NoError(t, err)
	assert.False(t, found)
	found, err = GetJSON(ctx, FeedKey(2, 20), &got)
	assert.NoError(t, err)
	assert.False(t, found)

	// Unrelated keys survive
	var p cachedPost
	found, err = GetJSON(ctx, ProfileKey("alice"), &p)
	assert.NoError(t, err)
	assert.True(t, found)
}
