package repository

import (
	"errors"
	"time"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeriesRepository struct {
	db *gorm.DB
}

func NewSeriesRepository(db *gorm.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// List 分页查询剧集列表（过滤参数与电影一致）
func (r *SeriesRepository) List(q ListQuery) ([]*model.Series, int64, error) {
	q.Normalize()

	tx := r.db.Model(&model.Series{})

	if q.Genre != "" {
		tx = tx.Joins("JOIN series_genres sg ON sg.series_id = series.id").
			Joins("JOIN genres g ON g.id = sg.genre_id").
			Where("g.name = ?", q.Genre)
	}
	if q.Year != "" {
		tx = tx.Where("series.year = ?", q.Year)
	}
	if q.Category != "" {
		tx = tx.Joins("JOIN categories cat ON cat.id = series.category_id").
			Where("cat.slug = ?", q.Category)
	}
	if q.Country != "" {
		tx = tx.Where("? = ANY(series.countries)", q.Country)
	}
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		tx = tx.Where("series.title ILIKE ? OR series.original_title ILIKE ?", kw, kw)
	}

	var total int64
	if err := tx.Distinct("series.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []*model.Series
	err := tx.Distinct().Select("series.*").
		Preload("Genres").
		Order(orderClause("series", q.Sort)).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&list).Error
	return list, total, err
}

// FindByID 根据 ID 查找剧集，预载季和集
func (r *SeriesRepository) FindByID(id int) (*model.Series, error) {
	var series model.Series
	err := r.db.Preload("Genres").
		Preload("Seasons", func(db *gorm.DB) *gorm.DB {
			return db.Order("seasons.number ASC")
		}).
		Preload("Seasons.Episodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("episodes.number ASC")
		}).
		First(&series, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// FindByTmdbID 根据 TMDB ID 查找剧集
func (r *SeriesRepository) FindByTmdbID(tmdbID int) (*model.Series, error) {
	var series model.Series
	err := r.db.Where("tmdb_id = ?", tmdbID).First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// FindByIDs 批量查找（互动列表关联填充用）
func (r *SeriesRepository) FindByIDs(ids []int) (map[int]*model.Series, error) {
	var list []*model.Series
	if len(ids) == 0 {
		return map[int]*model.Series{}, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	res := make(map[int]*model.Series, len(list))
	for _, s := range list {
		res[s.ID] = s
	}
	return res, nil
}

// Upsert 按 TMDB ID 创建或更新剧集，并同步类型关联
func (r *SeriesRepository) Upsert(series *model.Series, genres []model.Genre) error {
	series.UpdatedAt = time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tmdb_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "original_title", "year", "poster", "backdrop", "rating",
				"countries", "summary", "status", "updated_at",
			}),
		}).Create(series).Error; err != nil {
			return err
		}
		// 冲突更新时 gorm 不回填 ID，需要按 tmdb_id 补查
		if series.ID == 0 {
			var existing model.Series
			if err := tx.Select("id").Where("tmdb_id = ?", series.TmdbID).
				First(&existing).Error; err != nil {
				return err
			}
			series.ID = existing.ID
		}
		if genres == nil {
			return nil
		}
		return tx.Model(series).Association("Genres").Replace(genres)
	})
}

// UpsertSeason 按（剧集, 季号）创建或更新季
func (r *SeriesRepository) UpsertSeason(season *model.Season) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "series_id"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "poster", "air_date"}),
	}).Create(season).Error; err != nil {
		return err
	}
	if season.ID == 0 {
		var existing model.Season
		if err := r.db.Select("id").
			Where("series_id = ? AND number = ?", season.SeriesID, season.Number).
			First(&existing).Error; err != nil {
			return err
		}
		season.ID = existing.ID
	}
	return nil
}

// UpsertEpisode 按（季, 集号）创建或更新集
func (r *SeriesRepository) UpsertEpisode(episode *model.Episode) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "season_id"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "overview", "still", "runtime"}),
	}).Create(episode).Error
}

// FindEpisode 根据 ID 查找单集（带播放源）
func (r *SeriesRepository) FindEpisode(id int) (*model.Episode, error) {
	var episode model.Episode
	err := r.db.Preload("Videos").First(&episode, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &episode, nil
}

// Count 剧集总数
func (r *SeriesRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Series{}).Count(&count).Error
	return count, err
}

// Delete 删除剧集（季/集/播放源级联删除）
func (r *SeriesRepository) Delete(id int) error {
	return r.db.Select(clause.Associations).Delete(&model.Series{ID: id}).Error
}
