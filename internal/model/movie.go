package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Movie 电影模型（TMDB 元数据）
type Movie struct {
	ID               int              `json:"id" db:"id"`
	TmdbID           int              `json:"tmdb_id" db:"tmdb_id" gorm:"unique"`
	Title            string           `json:"title" db:"title"`
	OriginalTitle    string           `json:"original_title" db:"original_title"`
	Year             string           `json:"year" db:"year" gorm:"index"`
	Poster           string           `json:"poster" db:"poster"`
	Backdrop         string           `json:"backdrop" db:"backdrop"`
	Rating           float64          `json:"rating" db:"rating" gorm:"index"`
	Countries        pq.StringArray   `json:"countries" db:"countries" gorm:"type:text[]"`
	Summary          string           `json:"summary" db:"summary"`
	Duration         int              `json:"duration" db:"duration"` // 分钟
	IMDbID           string           `json:"imdb_id" db:"imdb_id" gorm:"column:imdb_id"`
	CategoryID       *int             `json:"category_id" db:"category_id"`
	Genres           []Genre          `json:"genres" gorm:"many2many:movie_genres"`
	Videos           []Video          `json:"videos,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	EmbeddingContent string           `json:"-" db:"embedding_content"`
	Embedding        *pgvector.Vector `json:"-" db:"embedding" gorm:"type:vector(768)"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at" gorm:"index"`
}

// Genre 类型标签（电影/剧集多对多）
type Genre struct {
	ID     int    `json:"id" db:"id"`
	TmdbID int    `json:"tmdb_id" db:"tmdb_id" gorm:"unique"`
	Name   string `json:"name" db:"name"`
}

// Category 栏目分类（如 影院热映、经典老片）
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug" gorm:"unique"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
