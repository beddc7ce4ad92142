package model

import (
	"time"

	"gorm.io/datatypes"
)

// Exercise 动作目录
type Exercise struct {
	ID               string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Slug             string                      `gorm:"type:varchar(64);uniqueIndex;not null" json:"exerciseId"`
	Title            string                      `gorm:"type:varchar(128);not null" json:"title"`
	Type             string                      `gorm:"type:varchar(32);not null" json:"type"` // weight_reps | time_based | bodyweight
	PrimaryMuscle    string                      `gorm:"type:varchar(64)" json:"primaryMuscle"`
	SecondaryMuscles datatypes.JSONSlice[string] `json:"secondaryMuscles"`
	Difficulty       string                      `gorm:"type:varchar(32)" json:"difficulty"`
	Equipment        datatypes.JSONSlice[string] `json:"equipment"`
	Instructions     datatypes.JSONSlice[string] `json:"instructions"`
	VideoURL         string                      `gorm:"type:varchar(512)" json:"videoUrl"`
	IsCustom         bool                        `gorm:"index" json:"isCustom"`
	CreatedAt        time.Time                   `json:"createdAt"`
}

func (Exercise) TableName() string { return "exercises" }
