// Package service holds the business rules between handlers and repositories.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ripple/internal/models"
	"ripple/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
	// AuthorID restricts the feed to one author when non-zero.
	AuthorID uint
	// FollowingOnly restricts the feed to authors the current user follows.
	FollowingOnly bool
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", models.MaxPostContentLen))
	}

	post := &models.Post{
		Content:  content,
		ImageURL: strings.TrimSpace(in.ImageURL),
		AuthorID: in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read so the response carries the joined author and zeroed aggregates.
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.FollowingOnly && in.CurrentUserID == 0 {
		return nil, models.NewUnauthorizedError("Sign in to view your following feed")
	}

	opts := repository.PostListOptions{
		Limit:    in.Limit,
		Offset:   in.Offset,
		AuthorID: in.AuthorID,
	}
	if in.FollowingOnly {
		opts.FollowingOf = in.CurrentUserID
	}
	return s.postRepo.List(ctx, opts, in.CurrentUserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.AuthorID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike flips the like state for (userID, postID). The caller passes the
// state it observed before its optimistic flip; that decides insert-vs-delete
// so two rapid toggles cannot race on "current state". Returns the post with
// fresh aggregates.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint, wasLiked bool) (*models.Post, error) {
	// Existence check first so a like on a deleted post 404s.
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	if wasLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}
