package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPostID(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments", middleware.Logger)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "comments")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.Error(ctx, err, "Create")
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error; err != nil {
		r.log.Error(ctx, err, "Create")
		return models.NewInternalError(err)
	}
	comment.Author.Sanitize()
	r.log.Write(ctx, "Create", map[string]interface{}{"comment_id": comment.ID, "post_id": comment.PostID})
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	comment.Author.Sanitize()
	return &comment, nil
}

// ListByPostID returns the post's comments oldest first, the order a
// conversation reads in.
func (r *commentRepository) ListByPostID(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range comments {
		c.Author.Sanitize()
	}
	return comments, nil
}

func (r *commentRepository) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", "comments")
	defer span.End()

	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		r.log.Error(ctx, err, "Delete")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Delete", map[string]interface{}{"comment_id": id})
	return nil
}
