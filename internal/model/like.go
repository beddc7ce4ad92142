package model

// WorkoutLike 点赞成员关系，(workout_id, user_id) 即主键
type WorkoutLike struct {
	WorkoutID string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey;type:varchar(36);index:idx_like_user"`
}

func (WorkoutLike) TableName() string { return "workout_likes" }
