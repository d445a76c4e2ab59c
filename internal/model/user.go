package model

import (
	"time"
)

// Role labels stored in User.UserType
const (
	RoleOrdinary = "ordinary user"
	RoleAdmin    = "system administrator"
)

// User represents the user model stored in the database
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        *string   `json:"email,omitempty" gorm:"type:varchar(128);uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"type:varchar(256);not null"`
	FullName     string    `json:"full_name" gorm:"type:varchar(128)"`
	Phone        string    `json:"phone" gorm:"type:varchar(32)"`
	Intro        string    `json:"intro" gorm:"type:text"`
	UserType     string    `json:"user_type" gorm:"type:varchar(64);not null;default:'ordinary user'"`
	RegisterTime time.Time `json:"register_time" gorm:"autoCreateTime"`
	UpdateTime   time.Time `json:"update_time" gorm:"autoUpdateTime"`
}
