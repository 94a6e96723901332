package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxPostContentLen is the post character limit, counted in runes.
const MaxPostContentLen = 280

var (
	// ErrEmptyDraft is returned when submitting an empty or whitespace-only
	// draft. The check is local; no remote call is made.
	ErrEmptyDraft = errors.New("client: draft is empty")
	// ErrDraftTooLong is returned when the draft exceeds MaxPostContentLen.
	ErrDraftTooLong = errors.New("client: draft exceeds character limit")
)

// SubmitFunc publishes validated content remotely.
type SubmitFunc func(ctx context.Context, content string) (*Post, error)

// Composer holds a transient post draft. Submission validates locally first;
// on success the draft clears, on failure it survives intact for a retry.
type Composer struct {
	mu     sync.Mutex
	draft  string
	submit SubmitFunc
}

// NewComposer creates a Composer submitting through fn.
func NewComposer(fn SubmitFunc) *Composer {
	return &Composer{submit: fn}
}

// SetDraft replaces the current draft text.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Len returns the draft length in runes, the unit the limit is counted in.
func (c *Composer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return utf8.RuneCountInString(c.draft)
}

// Submit validates and publishes the draft. Empty and over-limit drafts are
// rejected locally without any remote call.
func (c *Composer) Submit(ctx context.Context) (*Post, error) {
	c.mu.Lock()
	content := strings.TrimSpace(c.draft)
	c.mu.Unlock()

	if content == "" {
		return nil, ErrEmptyDraft
	}
	if utf8.RuneCountInString(content) > MaxPostContentLen {
		return nil, ErrDraftTooLong
	}

	post, err := c.submit(ctx, content)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()
	return post, nil
}
