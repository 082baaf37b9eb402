package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ListQuery 目录列表查询参数
type ListQuery struct {
	Genre    string
	Year     string
	Category string
	Country  string
	Keyword  string
	Sort     string // rating | year | updated
	Page     int
	PageSize int
}

// Normalize 填默认值并夹住分页范围
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 50 {
		q.PageSize = 50
	}
	switch q.Sort {
	case "rating", "year", "updated":
	default:
		q.Sort = "updated"
	}
}

// CacheKey 归一化后的缓存键
func (q *ListQuery) CacheKey(prefix string) string {
	return fmt.Sprintf("%s:g=%s:y=%s:c=%s:co=%s:q=%s:s=%s:p=%d:ps=%d",
		prefix, q.Genre, q.Year, q.Category, q.Country,
		strings.ToLower(q.Keyword), q.Sort, q.Page, q.PageSize)
}

// orderClause 排序字段白名单，防止排序参数注入
func orderClause(table, sort string) string {
	switch sort {
	case "rating":
		return table + ".rating DESC"
	case "year":
		return table + ".year DESC"
	default:
		return table + ".updated_at DESC"
	}
}

// List 分页查询电影列表
func (r *MovieRepository) List(q ListQuery) ([]*model.Movie, int64, error) {
	q.Normalize()

	tx := r.db.Model(&model.Movie{})

	if q.Genre != "" {
		tx = tx.Joins("JOIN movie_genres mg ON mg.movie_id = movies.id").
			Joins("JOIN genres g ON g.id = mg.genre_id").
			Where("g.name = ?", q.Genre)
	}
	if q.Year != "" {
		tx = tx.Where("movies.year = ?", q.Year)
	}
	if q.Category != "" {
		tx = tx.Joins("JOIN categories cat ON cat.id = movies.category_id").
			Where("cat.slug = ?", q.Category)
	}
	if q.Country != "" {
		// postgres text[] 包含查询
		tx = tx.Where("? = ANY(movies.countries)", q.Country)
	}
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		tx = tx.Where("movies.title ILIKE ? OR movies.original_title ILIKE ?", kw, kw)
	}

	var total int64
	if err := tx.Distinct("movies.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []*model.Movie
	err := tx.Distinct().Select("movies.*").
		Preload("Genres").
		Order(orderClause("movies", q.Sort)).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&movies).Error
	return movies, total, err
}

// FindByID 根据 ID 查找电影（带类型和播放源）
func (r *MovieRepository) FindByID(id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Preload("Genres").Preload("Videos").First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByTmdbID 根据 TMDB ID 查找电影
func (r *MovieRepository) FindByTmdbID(tmdbID int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Preload("Genres").Where("tmdb_id = ?", tmdbID).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByIDs 批量查找（互动列表关联填充用）
func (r *MovieRepository) FindByIDs(ids []int) (map[int]*model.Movie, error) {
	var movies []*model.Movie
	if len(ids) == 0 {
		return map[int]*model.Movie{}, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&movies).Error; err != nil {
		return nil, err
	}
	res := make(map[int]*model.Movie, len(movies))
	for _, m := range movies {
		res[m.ID] = m
	}
	return res, nil
}

// Upsert 按 TMDB ID 创建或更新电影，并同步类型关联
func (r *MovieRepository) Upsert(movie *model.Movie, genres []model.Genre) error {
	movie.UpdatedAt = time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tmdb_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "original_title", "year", "poster", "backdrop", "rating",
				"countries", "summary", "duration", "imdb_id",
				"embedding_content", "updated_at",
			}),
		}).Create(movie).Error; err != nil {
			return err
		}
		// 冲突更新时 gorm 不回填 ID，需要按 tmdb_id 补查
		if movie.ID == 0 {
			var existing model.Movie
			if err := tx.Select("id").Where("tmdb_id = ?", movie.TmdbID).
				First(&existing).Error; err != nil {
				return err
			}
			movie.ID = existing.ID
		}
		if genres == nil {
			return nil
		}
		return tx.Model(movie).Association("Genres").Replace(genres)
	})
}

// SetCategory 设置影片所属栏目，categoryID 为 nil 时移出栏目
func (r *MovieRepository) SetCategory(id int, categoryID *int) error {
	return r.db.Model(&model.Movie{}).Where("id = ?", id).Update("category_id", categoryID).Error
}

// UpdateEmbedding 写入向量（向量由离线任务计算后回填）
func (r *MovieRepository) UpdateEmbedding(id int, embedding pgvector.Vector) error {
	return r.db.Model(&model.Movie{}).Where("id = ?", id).Update("embedding", embedding).Error
}

// FindSimilar 相似影片：优先走向量最近邻，没有向量时退回同类型匹配
func (r *MovieRepository) FindSimilar(id, limit int) ([]*model.Movie, error) {
	movie, err := r.FindByID(id)
	if err != nil || movie == nil {
		return nil, err
	}

	if movie.Embedding != nil {
		var movies []*model.Movie
		err := r.db.Raw(`
			SELECT * FROM movies
			WHERE id <> ? AND embedding IS NOT NULL
			ORDER BY embedding <=> ?
			LIMIT ?
		`, id, *movie.Embedding, limit).Scan(&movies).Error
		if err == nil && len(movies) > 0 {
			return movies, nil
		}
		// 向量查询失败时退回类型匹配
	}

	var movies []*model.Movie
	err = r.db.Distinct("movies.*").
		Joins("JOIN movie_genres mg ON mg.movie_id = movies.id").
		Where("mg.genre_id IN (SELECT genre_id FROM movie_genres WHERE movie_id = ?)", id).
		Where("movies.id <> ?", id).
		Order("movies.rating DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// Count 电影总数
func (r *MovieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// Delete 删除电影（播放源级联删除）
func (r *MovieRepository) Delete(id int) error {
	return r.db.Select(clause.Associations).Delete(&model.Movie{ID: id}).Error
}
