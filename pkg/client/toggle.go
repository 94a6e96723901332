package client

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is returned when a toggle is triggered while a previous call is
// still in flight. At most one call may be outstanding per control.
var ErrPending = errors.New("client: toggle already pending")

// ToggleState is the position of a like/follow control.
type ToggleState int

const (
	// IdleOff: off, no call in flight.
	IdleOff ToggleState = iota
	// IdleOn: on, no call in flight.
	IdleOn
	// PendingTowardOn: optimistically flipped on, awaiting confirmation.
	PendingTowardOn
	// PendingTowardOff: optimistically flipped off, awaiting confirmation.
	PendingTowardOff
)

func (s ToggleState) String() string {
	switch s {
	case IdleOff:
		return "idle-off"
	case IdleOn:
		return "idle-on"
	case PendingTowardOn:
		return "pending-toward-on"
	case PendingTowardOff:
		return "pending-toward-off"
	default:
		return "unknown"
	}
}

// ToggleResult is the authoritative state the server reports after a toggle.
type ToggleResult struct {
	On    bool
	Count int64
}

// RemoteToggleFunc performs the remote flip. pre is the state observed
// BEFORE the optimistic transition.
type RemoteToggleFunc func(ctx context.Context, pre bool) (ToggleResult, error)

// Toggle is the optimistic state machine guarding a like/follow control:
// trigger flips the visible state and count immediately, the remote call
// confirms or rolls back, and re-entry is rejected while a call is pending.
type Toggle struct {
	mu       sync.Mutex
	state    ToggleState
	count    int64
	remote   RemoteToggleFunc
	precheck func() error
}

// NewToggle creates a Toggle from the state the control was rendered with.
func NewToggle(on bool, count int64, remote RemoteToggleFunc) *Toggle {
	state := IdleOff
	if on {
		state = IdleOn
	}
	return &Toggle{state: state, count: count, remote: remote}
}

// NewLikeToggle wires a Toggle to the like control of a post. The machine
// refuses to trigger for an unauthenticated client, before any optimistic
// flip; deciding what to do with ErrNotAuthenticated (a login redirect,
// usually) is the caller's concern.
func NewLikeToggle(c *Client, post *Post) *Toggle {
	t := NewToggle(post.Liked, post.LikesCount, func(ctx context.Context, pre bool) (ToggleResult, error) {
		p, err := c.ToggleLike(ctx, post.ID, pre)
		if err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{On: p.Liked, Count: p.LikesCount}, nil
	})
	t.precheck = c.requireSession
	return t
}

// NewFollowToggle wires a Toggle to the follow control of a profile, with the
// same session precondition as NewLikeToggle.
func NewFollowToggle(c *Client, profile *Profile) *Toggle {
	t := NewToggle(profile.Following, profile.FollowersCount, func(ctx context.Context, pre bool) (ToggleResult, error) {
		p, err := c.ToggleFollow(ctx, profile.Username, pre)
		if err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{On: p.Following, Count: p.FollowersCount}, nil
	})
	t.precheck = c.requireSession
	return t
}

// State returns the current machine state.
func (t *Toggle) State() ToggleState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// On reports the state as currently displayed, optimistic flips included.
func (t *Toggle) On() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == IdleOn || t.state == PendingTowardOn
}

// Count returns the count as currently displayed.
func (t *Toggle) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Toggle flips the control. It applies the optimistic transition, invokes
// the remote call with the pre-optimistic state, and on failure restores the
// snapshot exactly. A call while pending returns ErrPending with no effect.
func (t *Toggle) Toggle(ctx context.Context) error {
	t.mu.Lock()
	if t.state == PendingTowardOn || t.state == PendingTowardOff {
		t.mu.Unlock()
		return ErrPending
	}

	// Precondition failures reject the trigger outright: the machine stays
	// idle and nothing is flipped, so there is nothing to roll back.
	if t.precheck != nil {
		if err := t.precheck(); err != nil {
			t.mu.Unlock()
			return err
		}
	}

	snapshot := struct {
		state ToggleState
		count int64
	}{t.state, t.count}

	pre := t.state == IdleOn
	if pre {
		t.state = PendingTowardOff
		t.count--
	} else {
		t.state = PendingTowardOn
		t.count++
	}
	t.mu.Unlock()

	result, err := t.remote(ctx, pre)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = snapshot.state
		t.count = snapshot.count
		return err
	}

	if result.On {
		t.state = IdleOn
	} else {
		t.state = IdleOff
	}
	t.count = result.Count
	return nil
}
