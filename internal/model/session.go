package model

import (
	"time"
)

// Session 登录会话，一行对应一台已登录的设备/浏览器
// Token 是服务端持有的不透明凭证，与 JWT 身份令牌配对使用
type Session struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"index"`
	Token     string    `json:"-" db:"token" gorm:"unique"`
	Device    string    `json:"device" db:"device"`
	Browser   string    `json:"browser" db:"browser"`
	OS        string    `json:"os" db:"os"`
	IP        string    `json:"ip" db:"ip"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // 最后活跃时间
	ExpiresAt time.Time `json:"expires_at" db:"expires_at" gorm:"index"`
}

// Expired 会话是否已过期
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionInfo 会话列表展示结构，Current 标记发起请求的会话
type SessionInfo struct {
	ID        int       `json:"id"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}
