// Package client is the Go client kit for the Ripple API. It packages the
// optimistic-mutation protocol the frontend follows: bearer sessions, a
// pending-guarded toggle state machine, a draft composer, and a feed view
// reconciled from realtime events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OriginHeader carries the client's stable origin tag on every mutation so
// the resulting broadcast event can be recognized as self-originated.
const OriginHeader = "X-Mutation-Origin"

// DefaultTimeout bounds each mutation call; a stuck request must not pin a
// control in its pending state forever.
const DefaultTimeout = 10 * time.Second

// ErrNotAuthenticated is returned before any optimistic transition when a
// mutation is attempted without a session.
var ErrNotAuthenticated = errors.New("client: not authenticated")

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string            `json:"code"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Profile is the wire shape of a profile.
type Profile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	AvatarURL      string `json:"avatar_url"`
	BannerURL      string `json:"banner_url"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	Following      bool   `json:"following"`
}

// Post is the wire shape of a post with its aggregates.
type Post struct {
	ID            uint      `json:"id"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"image_url"`
	AuthorID      uint      `json:"author_id"`
	Author        Profile   `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	Liked         bool      `json:"user_has_liked_post"`
}

// Comment is the wire shape of a comment.
type Comment struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	PostID    uint      `json:"post_id"`
	AuthorID  uint      `json:"author_id"`
	Author    Profile   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is an HTTP client for the Ripple API. Its zero Origin is assigned at
// construction and sent with every mutation.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	token  string
	origin string
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Timeout:    DefaultTimeout,
		origin:     uuid.New().String(),
	}
}

// Origin returns the stable mutation-origin tag of this client.
func (c *Client) Origin() string { return c.origin }

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string { return c.token }

// SetToken installs an existing session token.
func (c *Client) SetToken(token string) { c.token = token }

// Authenticated reports whether the client holds a session.
func (c *Client) Authenticated() bool { return c.token != "" }

// requireSession is the shared mutation precondition: it fails before any
// request is built or any optimistic state is touched.
func (c *Client) requireSession() error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

type authResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Signup registers a new account and starts a session.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*Profile, error) {
	var out authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out, false)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.Profile, nil
}

// Login authenticates and starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Profile, error) {
	var out authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out, false)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out.Profile, nil
}

// Logout ends the session locally and notifies the server.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, false)
	c.token = ""
	return err
}

// FeedOptions filters a feed fetch.
type FeedOptions struct {
	FollowingOnly bool
	Limit         int
	Offset        int
}

// FetchFeed retrieves the post feed, newest first.
func (c *Client) FetchFeed(ctx context.Context, opts FeedOptions) ([]Post, error) {
	path := fmt.Sprintf("/api/posts?limit=%d&offset=%d", opts.Limit, opts.Offset)
	if opts.FollowingOnly {
		path += "&feed=following"
	}
	var posts []Post
	if err := c.do(ctx, http.MethodGet, path, nil, &posts, false); err != nil {
		return nil, err
	}
	return posts, nil
}

// FetchPost retrieves a single post.
func (c *Client) FetchPost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post, false); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetProfile retrieves a profile by username.
func (c *Client) GetProfile(ctx context.Context, username string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+username, nil, &profile, false); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreatePost publishes a post. Content validation happens server-side; use
// Composer for the local pre-validation the UI applies.
func (c *Client) CreatePost(ctx context.Context, content string) (*Post, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var post Post
	err := c.doMutation(ctx, http.MethodPost, "/api/posts", map[string]string{
		"content": content,
	}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes an owned post.
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}
	return c.doMutation(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID uint, content string) (*Comment, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var comment Comment
	err := c.doMutation(ctx, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", postID), map[string]string{
			"content": content,
		}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike flips the like state of a post. wasLiked is the state observed
// BEFORE the optimistic flip; the server decides insert-vs-delete from it.
func (c *Client) ToggleLike(ctx context.Context, postID uint, wasLiked bool) (*Post, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var post Post
	err := c.doMutation(ctx, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", postID), map[string]bool{
			"liked": wasLiked,
		}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ToggleFollow flips the follow state of a profile. wasFollowing is the
// pre-optimistic state.
func (c *Client) ToggleFollow(ctx context.Context, username string, wasFollowing bool) (*Profile, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var profile Profile
	err := c.doMutation(ctx, http.MethodPost,
		"/api/profiles/"+username+"/follow", map[string]bool{
			"following": wasFollowing,
		}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// doMutation wraps do with the per-mutation timeout and origin header.
func (c *Client) doMutation(ctx context.Context, method, path string, body, out interface{}) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.do(ctx, method, path, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, mutation bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if mutation {
		req.Header.Set(OriginHeader, c.origin)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if derr := json.NewDecoder(resp.Body).Decode(apiErr); derr != nil {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
