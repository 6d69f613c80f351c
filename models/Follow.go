package models

import "time"

// Follow is a directed subscription: follower reads what followed writes.
// The composite unique index makes duplicate edges impossible at the store
// level; self-follows are rejected by a CHECK constraint added at startup.
type Follow struct {
	ID         uint      `gorm:"primary_key;autoIncrement" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follows_unique;index:idx_follows_follower_created,priority:1" json:"follower_id"`
	FollowedID uint      `gorm:"not null;index;uniqueIndex:idx_follows_unique;index:idx_follows_followed_created,priority:1" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_follows_followed_created,priority:2;index:idx_follows_follower_created,priority:2" json:"created_at"`
}
