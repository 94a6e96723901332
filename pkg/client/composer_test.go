package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposerSubmit(t *testing.T) {
	calls := 0
	c := NewComposer(func(_ context.Context, content string) (*Post, error) {
		calls++
		return &Post{ID: 1, Content: content}, nil
	})

	t.Run("empty draft rejected locally", func(t *testing.T) {
		c.SetDraft("")
		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrEmptyDraft)
		assert.Zero(t, calls)
	})

	t.Run("whitespace-only draft rejected locally", func(t *testing.T) {
		c.SetDraft("  \n\t ")
		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrEmptyDraft)
		assert.Zero(t, calls)
	})

	t.Run("over-limit draft rejected locally", func(t *testing.T) {
		c.SetDraft(strings.Repeat("a", MaxPostContentLen+1))
		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrDraftTooLong)
		assert.Zero(t, calls)
	})

	t.Run("multi-byte runes count as one character", func(t *testing.T) {
		c.SetDraft(strings.Repeat("é", MaxPostContentLen))
		post, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.NotNil(t, post)
	})

	t.Run("success clears the draft", func(t *testing.T) {
		c.SetDraft("hello world")
		post, err := c.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello world", post.Content)
		assert.Empty(t, c.Draft())
	})
}

func TestComposerKeepsDraftOnFailure(t *testing.T) {
	remoteErr := errors.New("boom")
	c := NewComposer(func(_ context.Context, _ string) (*Post, error) {
		return nil, remoteErr
	})

	c.SetDraft("precious words")
	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, remoteErr)
	assert.Equal(t, "precious words", c.Draft(), "draft survives a failed submit")
}

func TestComposerLen(t *testing.T) {
	c := NewComposer(nil)
	c.SetDraft("héllo")
	assert.Equal(t, 5, c.Len())
}
