package model

import "time"

// Follow 关注关系（Follower 关注 Following），只增删不改
type Follow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID  string    `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique" json:"followerId"`
	FollowingID string    `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_following" json:"followingId"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (Follow) TableName() string { return "follows" }
