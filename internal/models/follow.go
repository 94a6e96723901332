package models

import "time"

// Follow is a directed edge from a follower profile to a followed profile.
// The ordered (FollowerID, FollowedID) pair is unique; self-follows are
// rejected at the service layer before any row is written.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followed" json:"follower_id"`
	FollowedID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
