// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile represents a user identity and its social metadata.
type Profile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"unique;not null" json:"username"`
	Email        string         `gorm:"unique;not null" json:"email,omitempty"`
	PasswordHash string         `gorm:"not null" json:"-"`
	FullName     string         `json:"full_name"`
	Bio          string         `json:"bio"`
	AvatarURL    string         `json:"avatar_url"`
	BannerURL    string         `json:"banner_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// FollowersCount is not persisted; computed at query time.
	FollowersCount int64 `gorm:"-" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time.
	FollowingCount int64 `gorm:"-" json:"following_count"`
	// Following indicates whether the requesting user follows this profile (computed).
	Following bool `gorm:"-" json:"following"`
}

// Sanitize clears fields that must never leave the server for profiles
// other than the viewer's own.
func (p *Profile) Sanitize() {
	p.Email = ""
}
