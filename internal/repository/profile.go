// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetByUsernameWithStats(ctx context.Context, username string, currentUserID uint) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	Suggested(ctx context.Context, currentUserID uint, limit int) ([]*models.Profile, error)
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles", middleware.Logger)}
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

// applyProfileStats adds subqueries to fetch follower counts and the viewer's
// follow state in a single query.
func (r *profileRepository) applyProfileStats(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "profiles.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followed_id = profiles.id) as followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id) as following_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM follows WHERE follows.followed_id = profiles.id AND follows.follower_id = ?) as following", currentUserID)
	}

	return db.Select(selectQuery + ", false as following")
}

func (r *profileRepository) GetByUsernameWithStats(ctx context.Context, username string, currentUserID uint) (*models.Profile, error) {
	var profile models.Profile

	fetch := func() error {
		if err := r.applyProfileStats(r.db.WithContext(ctx), currentUserID).
			Where("username = ?", username).
			First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", username)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cache entry; viewer-specific fields are
		// always their zero value here.
		err = cache.CacheAside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "profiles")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Profile already exists")
		}
		r.log.Error(ctx, err, "Create")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Create", map[string]interface{}{"profile_id": profile.ID, "username": profile.Username})
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", "profiles")
	defer span.End()

	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Profile already exists")
		}
		r.log.Error(ctx, err, "Update")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Update", map[string]interface{}{"profile_id": profile.ID})
	cache.InvalidateProfile(ctx, profile.Username)
	return nil
}

// Suggested returns profiles the current user does not follow yet, newest
// first, excluding the user themselves.
func (r *profileRepository) Suggested(ctx context.Context, currentUserID uint, limit int) ([]*models.Profile, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	var profiles []*models.Profile
	q := r.applyProfileStats(r.db.WithContext(ctx), currentUserID)
	if currentUserID != 0 {
		q = q.Where("profiles.id != ?", currentUserID).
			Where("NOT EXISTS(SELECT 1 FROM follows WHERE follows.followed_id = profiles.id AND follows.follower_id = ?)", currentUserID)
	}
	if err := q.Order("profiles.created_at DESC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range profiles {
		p.Sanitize()
	}
	return profiles, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
