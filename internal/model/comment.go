package model

import "time"

type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	WorkoutID string    `gorm:"type:varchar(36);not null;index:idx_comment_workout_created"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_comment_workout_created"`
}

func (Comment) TableName() string { return "comments" }
