package repository

import (
	"errors"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
)

// VideoRepository 播放源仓库
type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create 创建播放源，电影和单集必须二选一
func (r *VideoRepository) Create(video *model.Video) error {
	if (video.MovieID == nil) == (video.EpisodeID == nil) {
		return errors.New("播放源必须且只能挂在电影或单集之一")
	}
	return r.db.Create(video).Error
}

// FindByID 根据 ID 查找播放源
func (r *VideoRepository) FindByID(id int) (*model.Video, error) {
	var video model.Video
	err := r.db.First(&video, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ListByMovie 电影的全部播放源
func (r *VideoRepository) ListByMovie(movieID int) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.Where("movie_id = ?", movieID).Order("id ASC").Find(&videos).Error
	return videos, err
}

// ListByEpisode 单集的全部播放源
func (r *VideoRepository) ListByEpisode(episodeID int) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.Where("episode_id = ?", episodeID).Order("id ASC").Find(&videos).Error
	return videos, err
}

// Delete 删除播放源
func (r *VideoRepository) Delete(id int) error {
	return r.db.Delete(&model.Video{}, id).Error
}
