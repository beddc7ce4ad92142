package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role       string    `gorm:"type:varchar(16);not null;default:user" json:"role"`
	ProfilePic string    `gorm:"type:varchar(512)" json:"profilePic"`
	Bio        string    `gorm:"type:varchar(200)" json:"bio"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
