package repository

import (
	"time"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add 加入想看清单（重复添加静默忽略）
func (r *WatchlistRepository) Add(userID int, mediaType string, mediaID int) error {
	entry := &model.WatchlistEntry{
		UserID:    userID,
		MediaType: mediaType,
		MediaID:   mediaID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// Remove 从想看清单移除
func (r *WatchlistRepository) Remove(userID int, mediaType string, mediaID int) error {
	return r.db.Where("user_id = ? AND media_type = ? AND media_id = ?", userID, mediaType, mediaID).
		Delete(&model.WatchlistEntry{}).Error
}

// Contains 检查是否已在清单中
func (r *WatchlistRepository) Contains(userID int, mediaType string, mediaID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.WatchlistEntry{}).
		Where("user_id = ? AND media_type = ? AND media_id = ?", userID, mediaType, mediaID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户想看清单
func (r *WatchlistRepository) ListByUser(userID, limit, offset int) ([]*model.WatchlistEntry, error) {
	var entries []*model.WatchlistEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

// CountByUser 统计用户想看数量
func (r *WatchlistRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.WatchlistEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
