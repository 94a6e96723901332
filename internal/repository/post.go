package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostListOptions narrows a feed query.
type PostListOptions struct {
	Limit  int
	Offset int
	// AuthorID restricts the feed to one author when non-zero.
	AuthorID uint
	// FollowingOf restricts the feed to authors followed by this user when non-zero.
	FollowingOf uint
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, opts PostListOptions, currentUserID uint) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts", middleware.Logger)}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", 0 as liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "posts")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.Error(ctx, err, "Create")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Create", map[string]interface{}{"post_id": post.ID, "author_id": post.AuthorID})
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "posts")
	defer span.End()

	var post models.Post

	fetch := func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		post.Author.Sanitize()
		return nil
	}

	var err error
	if currentUserID == 0 {
		err = cache.CacheAside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, opts PostListOptions, currentUserID uint) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "posts")
	defer span.End()

	var posts []*models.Post

	fetch := func() error {
		q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author")
		if opts.AuthorID != 0 {
			q = q.Where("posts.author_id = ?", opts.AuthorID)
		}
		if opts.FollowingOf != 0 {
			q = q.Where("posts.author_id IN (SELECT followed_id FROM follows WHERE follower_id = ?)", opts.FollowingOf)
		}
		if err := q.Order("posts.created_at DESC").
			Limit(opts.Limit).
			Offset(opts.Offset).
			Find(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, p := range posts {
			p.Author.Sanitize()
		}
		return nil
	}

	var err error
	if currentUserID == 0 && opts.AuthorID == 0 && opts.FollowingOf == 0 {
		// Only the anonymous global feed is cacheable; every other shape is
		// viewer-specific.
		page := opts.Offset/maxInt(opts.Limit, 1) + 1
		err = cache.CacheAside(ctx, cache.FeedKey(page, opts.Limit), &posts, cache.FeedTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", "posts")
	defer span.End()

	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		r.log.Error(ctx, err, "Delete")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Delete", map[string]interface{}{"post_id": id})
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Like", "likes")
	defer span.End()

	// ON CONFLICT DO NOTHING absorbs the race where two toggles for the same
	// pair land concurrently.
	like := models.Like{UserID: userID, PostID: postID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
	if err != nil {
		r.log.Error(ctx, err, "Like")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Like", map[string]interface{}{"post_id": postID, "user_id": userID})
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Unlike", "likes")
	defer span.End()

	// Hard delete: a like has no soft-delete state.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		r.log.Error(ctx, err, "Unlike")
		return models.NewInternalError(err)
	}
	r.log.Write(ctx, "Unlike", map[string]interface{}{"post_id": postID, "user_id": userID})
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
