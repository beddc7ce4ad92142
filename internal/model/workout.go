package model

import (
	"time"

	"gorm.io/datatypes"
)

type WorkoutSet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// ExerciseEntry 一次训练中的某个动作及其组数
type ExerciseEntry struct {
	ExerciseID string       `json:"exercise"`
	Sets       []WorkoutSet `json:"sets"`
}

// Workout 训练记录；点赞成员存放在 workout_likes
type Workout struct {
	ID        string                             `gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string                             `gorm:"type:varchar(36);not null;index:idx_workout_owner_created"`
	Title     string                             `gorm:"type:varchar(255)"`
	StartTime time.Time                          `gorm:"not null"`
	Duration  int                                // 分钟，创建时计算
	Exercises datatypes.JSONSlice[ExerciseEntry] `gorm:"not null"`
	CreatedAt time.Time                          `gorm:"index:idx_workout_owner_created;index:idx_workout_created"`
	UpdatedAt time.Time
}

func (Workout) TableName() string { return "workouts" }
