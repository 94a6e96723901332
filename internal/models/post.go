package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostContentLen is the character ceiling for post content.
const MaxPostContentLen = 280

// Post is a piece of content owned by exactly one Profile. Content is
// immutable after creation; there is no update path.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"not null" json:"content"`
	ImageURL  string         `json:"image_url"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    Profile        `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// LikesCount is not persisted; computed at query time.
	LikesCount int64 `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int64 `gorm:"-" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed).
	Liked bool `gorm:"-" json:"user_has_liked_post"`
}
