package repository

import (
	"errors"
	"time"

	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/utils"
	"gorm.io/gorm"
)

// SessionRepository 登录会话仓库
type SessionRepository struct {
	db    *gorm.DB
	limit int // 单用户最大并发会话数
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db, limit: 4}
}

// SetLimit 调整并发会话上限（配置注入用）
func (r *SessionRepository) SetLimit(limit int) {
	if limit > 0 {
		r.limit = limit
	}
}

// Create 创建会话。未过期会话数达到上限时返回 ErrSessionLimit，
// 计数与插入放在同一事务里，避免并发登录挤过上限
func (r *SessionRepository) Create(userID int, meta utils.ClientMeta, ip string, expiry time.Duration) (*model.Session, error) {
	token, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &model.Session{
		UserID:    userID,
		Token:     token,
		Device:    meta.Device,
		Browser:   meta.Browser,
		OS:        meta.OS,
		IP:        ip,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(expiry),
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Session{}).
			Where("user_id = ? AND expires_at > ?", userID, now).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(r.limit) {
			return ErrSessionLimit
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// FindByToken 根据令牌查找未过期的会话
func (r *SessionRepository) FindByToken(token string) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Touch 更新最后活跃时间（尽力而为，失败不影响请求）
func (r *SessionRepository) Touch(sessionID int) error {
	return r.db.Model(&model.Session{}).Where("id = ?", sessionID).
		Update("updated_at", time.Now()).Error
}

// CountActive 统计用户未过期会话数
func (r *SessionRepository) CountActive(userID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Session{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	return count, err
}

// ListByUser 获取用户全部未过期会话，最近活跃的在前
func (r *SessionRepository) ListByUser(userID int) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("updated_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// Delete 删除用户名下的指定会话，返回实际删除行数
func (r *SessionRepository) Delete(userID, sessionID int) (int64, error) {
	res := r.db.Where("user_id = ? AND id = ?", userID, sessionID).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

// DeleteOthers 删除用户除当前会话外的全部会话，返回删除数量
func (r *SessionRepository) DeleteOthers(userID, currentID int) (int64, error) {
	res := r.db.Where("user_id = ? AND id <> ?", userID, currentID).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

// DeleteByToken 根据令牌删除会话（登出用，不存在也不报错）
func (r *SessionRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&model.Session{}).Error
}

// DeleteExpired 清理已过期会话，返回删除数量
func (r *SessionRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

// CountAll 会话总数（后台统计用）
func (r *SessionRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Session{}).Where("expires_at > ?", time.Now()).Count(&count).Error
	return count, err
}
