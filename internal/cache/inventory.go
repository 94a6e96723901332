package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix   = "profile:%s"
	PostKeyPrefix      = "post:%d"
	FeedKeyPrefix      = "feed:global:%d:%d"
	SuggestedKeyPrefix = "suggested:%d"
)

const (
	ProfileTTL   = 5 * time.Minute
	PostTTL      = 10 * time.Minute
	FeedTTL      = 30 * time.Second
	SuggestedTTL = 2 * time.Minute
)

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func FeedKey(page, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, page, limit)
}

func SuggestedKey(userID uint) string {
	return fmt.Sprintf(SuggestedKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateFeed drops every cached page of the anonymous global feed. Pages
// are keyed by page and limit so a pattern delete is required.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, "feed:global:*").Result()
	if err != nil {
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
