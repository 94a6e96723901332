package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

type FollowService struct {
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
}

func NewFollowService(followRepo repository.FollowRepository, profileRepo repository.ProfileRepository) *FollowService {
	return &FollowService{followRepo: followRepo, profileRepo: profileRepo}
}

// ToggleFollow flips the follow edge from followerID toward the named profile.
// wasFollowing is the state the caller observed before its optimistic flip;
// it decides insert-vs-delete. Returns the followed profile with fresh counts
// from the follower's point of view.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID uint, username string, wasFollowing bool) (*models.Profile, error) {
	target, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("Profile", username)
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	if wasFollowing {
		if err := s.followRepo.Unfollow(ctx, followerID, target.ID); err != nil {
			return nil, err
		}
	} else {
		if err := s.followRepo.Follow(ctx, followerID, target.ID); err != nil {
			return nil, err
		}
	}

	fresh, err := s.profileRepo.GetByUsernameWithStats(ctx, username, followerID)
	if err != nil {
		return nil, err
	}
	fresh.Sanitize()
	return fresh, nil
}

func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]*models.Profile, error) {
	target, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("Profile", username)
	}
	return s.followRepo.Followers(ctx, target.ID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) ([]*models.Profile, error) {
	target, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("Profile", username)
	}
	return s.followRepo.Following(ctx, target.ID, limit, offset)
}

// Suggested returns profiles the user might want to follow.
func (s *FollowService) Suggested(ctx context.Context, userID uint, limit int) ([]*models.Profile, error) {
	return s.profileRepo.Suggested(ctx, userID, limit)
}
