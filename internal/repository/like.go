package repository

import (
	"time"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add 点赞（重复点赞静默忽略）
func (r *LikeRepository) Add(userID int, mediaType string, mediaID int) error {
	like := &model.Like{
		UserID:    userID,
		MediaType: mediaType,
		MediaID:   mediaID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// Remove 取消点赞
func (r *LikeRepository) Remove(userID int, mediaType string, mediaID int) error {
	return r.db.Where("user_id = ? AND media_type = ? AND media_id = ?", userID, mediaType, mediaID).
		Delete(&model.Like{}).Error
}

// IsLiked 检查是否已点赞
func (r *LikeRepository) IsLiked(userID int, mediaType string, mediaID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND media_type = ? AND media_id = ?", userID, mediaType, mediaID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户点赞列表
func (r *LikeRepository) ListByUser(userID, limit, offset int) ([]*model.Like, error) {
	var likes []*model.Like
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&likes).Error
	return likes, err
}

// CountByUser 统计用户点赞数量
func (r *LikeRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// CountByMedia 统计条目获赞数量
func (r *LikeRepository) CountByMedia(mediaType string, mediaID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("media_type = ? AND media_id = ?", mediaType, mediaID).
		Count(&count).Error
	return count, err
}
