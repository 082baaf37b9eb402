package model

import (
	"time"
)

// PasswordReset 密码重置令牌
// 状态机：created(active=false) → activated(active=true, expires_at=激活时间+5分钟)
// → used（终态）或 过期删除（终态）
type PasswordReset struct {
	ID        int        `json:"id" db:"id"`
	Email     string     `json:"email" db:"email" gorm:"index"`
	Token     string     `json:"-" db:"token" gorm:"unique"`
	Active    bool       `json:"active" db:"active" gorm:"default:false"` // 管理员激活后才可用
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`              // 激活前为空
	Used      bool       `json:"used" db:"used" gorm:"default:false"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Usable 令牌当前是否可用于重置（不含过期判断，过期由消费路径处理）
func (p *PasswordReset) Usable() bool {
	return p.Active && !p.Used && p.ExpiresAt != nil
}
