package repository

import (
	"errors"

	"github.com/user/vidora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenreRepository 类型标签仓库
type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// UpsertAll 批量写入类型（TMDB 导入时同步），返回带 ID 的记录
func (r *GenreRepository) UpsertAll(genres []model.Genre) ([]model.Genre, error) {
	res := make([]model.Genre, 0, len(genres))
	for _, g := range genres {
		if err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tmdb_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&g).Error; err != nil {
			return nil, err
		}
		// ON CONFLICT 更新路径下 gorm 不回填主键，补查一次
		if g.ID == 0 {
			var existing model.Genre
			if err := r.db.Where("tmdb_id = ?", g.TmdbID).First(&existing).Error; err != nil {
				return nil, err
			}
			g = existing
		}
		res = append(res, g)
	}
	return res, nil
}

// ListAll 全部类型
func (r *GenreRepository) ListAll() ([]*model.Genre, error) {
	var genres []*model.Genre
	err := r.db.Order("name ASC").Find(&genres).Error
	return genres, err
}

// CategoryRepository 栏目分类仓库
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 创建分类
func (r *CategoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *CategoryRepository) Update(category *model.Category) error {
	return r.db.Model(&model.Category{}).Where("id = ?", category.ID).
		Updates(map[string]interface{}{"name": category.Name, "slug": category.Slug}).Error
}

// Delete 删除分类
func (r *CategoryRepository) Delete(id int) error {
	return r.db.Delete(&model.Category{}, id).Error
}

// FindBySlug 根据 slug 查找分类
func (r *CategoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListAll 全部分类
func (r *CategoryRepository) ListAll() ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.Order("id ASC").Find(&categories).Error
	return categories, err
}
