package repository

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow edge operations.
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	Followers(ctx context.Context, profileID uint, limit, offset int) ([]*models.Profile, error)
	Following(ctx context.Context, profileID uint, limit, offset int) ([]*models.Profile, error)
	CountFollowers(ctx context.Context, profileID uint) (int64, error)
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows", middleware.Logger)}
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Follow", "follows")
	defer span.End()

	// ON CONFLICT DO NOTHING keeps concurrent duplicate toggles idempotent.
	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
			DoNothing: true,
		}).
		Create(&edge).Error
	if err != nil {
		r.log.Error(ctx, err, "Follow")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Follow", map[string]interface{}{"follower_id": followerID, "followed_id": followedID})
	r.invalidateEdge(ctx, followerID, followedID)
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Unfollow", "follows")
	defer span.End()

	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	if err != nil {
		r.log.Error(ctx, err, "Unfollow")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Unfollow", map[string]interface{}{"follower_id": followerID, "followed_id": followedID})
	r.invalidateEdge(ctx, followerID, followedID)
	return nil
}

// invalidateEdge drops the cached profile entries on both sides of the edge
// since their follower counts changed.
func (r *followRepository) invalidateEdge(ctx context.Context, followerID, followedID uint) {
	var usernames []string
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id IN ?", []uint{followerID, followedID}).
		Pluck("username", &usernames).Error; err != nil {
		return
	}
	for _, u := range usernames {
		cache.InvalidateProfile(ctx, u)
	}
}

func (r *followRepository) Followers(ctx context.Context, profileID uint, limit, offset int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Joins("JOIN follows ON follows.follower_id = profiles.id").
		Where("follows.followed_id = ?", profileID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range profiles {
		p.Sanitize()
	}
	return profiles, nil
}

func (r *followRepository) Following(ctx context.Context, profileID uint, limit, offset int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Joins("JOIN follows ON follows.followed_id = profiles.id").
		Where("follows.follower_id = ?", profileID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range profiles {
		p.Sanitize()
	}
	return profiles, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_id = ?", profileID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
