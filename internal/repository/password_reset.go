package repository

import (
	"errors"
	"time"

	"github.com/user/vidora/internal/model"
	"github.com/user/vidora/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordResetRepository 密码重置令牌仓库
type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create 创建待激活的重置令牌（active=false，expires_at 为空）
func (r *PasswordResetRepository) Create(email string) (*model.PasswordReset, error) {
	token, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     token,
		Active:    false,
		Used:      false,
		CreatedAt: time.Now(),
	}

	if err := r.db.Create(reset).Error; err != nil {
		return nil, err
	}
	return reset, nil
}

// FindByToken 根据令牌查找重置记录
func (r *PasswordResetRepository) FindByToken(token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.Where("token = ?", token).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// Activate 管理员激活令牌：置 active=true 并在此刻起算有效期
func (r *PasswordResetRepository) Activate(id int, ttl time.Duration) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.First(&reset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if reset.Used {
		return nil, ErrTokenUsed
	}

	expiresAt := time.Now().Add(ttl)
	err = r.db.Model(&reset).Updates(map[string]interface{}{
		"active":     true,
		"expires_at": expiresAt,
	}).Error
	if err != nil {
		return nil, err
	}

	reset.Active = true
	reset.ExpiresAt = &expiresAt
	return &reset, nil
}

// Consume 消费令牌并重置密码。
// 校验顺序：存在 → 未用过 → 已激活且有有效期 → 未过期。
// 过期的记录当场删除并返回 ErrTokenExpired。
// 改密码、标记已用、清理同邮箱其余未用令牌在同一事务内完成，
// 避免并发重置时留下可用的旁路令牌
func (r *PasswordResetRepository) Consume(token, newPassword string) error {
	reset, err := r.FindByToken(token)
	if err != nil {
		return err
	}
	if reset == nil {
		return ErrTokenNotFound
	}
	if reset.Used {
		return ErrTokenUsed
	}
	// 未激活或缺失有效期都视为"尚未激活"
	if !reset.Active || reset.ExpiresAt == nil {
		return ErrTokenInactive
	}
	if time.Now().After(*reset.ExpiresAt) {
		// 过期即删，下次凭同一令牌来只会得到"不存在"
		if err := r.db.Delete(&model.PasswordReset{}, reset.ID).Error; err != nil {
			return err
		}
		return ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("email = ?", reset.Email).
			Update("password_hash", string(hash))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		if err := tx.Model(&model.PasswordReset{}).Where("id = ?", reset.ID).
			Update("used", true).Error; err != nil {
			return err
		}

		// 清理同邮箱其余未使用的令牌，防止并行申请留下后门
		return tx.Where("email = ? AND id <> ? AND used = ?", reset.Email, reset.ID, false).
			Delete(&model.PasswordReset{}).Error
	})
}

// 清理模式
const (
	CleanupExpired = "expired" // 已过期且未使用
	CleanupUsed    = "used"    // 已使用
	CleanupAll     = "all"     // 两者都清
)

// Cleanup 按模式批量清理令牌，返回删除数量
func (r *PasswordResetRepository) Cleanup(mode string) (int64, error) {
	now := time.Now()
	var res *gorm.DB

	switch mode {
	case CleanupExpired:
		res = r.db.Where("used = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now).
			Delete(&model.PasswordReset{})
	case CleanupUsed:
		res = r.db.Where("used = ?", true).Delete(&model.PasswordReset{})
	case CleanupAll:
		res = r.db.Where("used = ? OR (used = ? AND expires_at IS NOT NULL AND expires_at <= ?)",
			true, false, now).Delete(&model.PasswordReset{})
	default:
		return 0, errors.New("未知的清理模式: " + mode)
	}

	return res.RowsAffected, res.Error
}

// ListAll 全部令牌，最新的在前（后台展示用）
func (r *PasswordResetRepository) ListAll() ([]*model.PasswordReset, error) {
	var resets []*model.PasswordReset
	err := r.db.Order("created_at DESC").Find(&resets).Error
	return resets, err
}
