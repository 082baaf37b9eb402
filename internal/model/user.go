package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" gorm:"unique"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
