package model

import (
	"time"

	"github.com/lib/pq"
)

// Series 剧集模型
type Series struct {
	ID            int            `json:"id" db:"id"`
	TmdbID        int            `json:"tmdb_id" db:"tmdb_id" gorm:"unique"`
	Title         string         `json:"title" db:"title"`
	OriginalTitle string         `json:"original_title" db:"original_title"`
	Year          string         `json:"year" db:"year" gorm:"index"`
	Poster        string         `json:"poster" db:"poster"`
	Backdrop      string         `json:"backdrop" db:"backdrop"`
	Rating        float64        `json:"rating" db:"rating" gorm:"index"`
	Countries     pq.StringArray `json:"countries" db:"countries" gorm:"type:text[]"`
	Summary       string         `json:"summary" db:"summary"`
	Status        string         `json:"status" db:"status"` // 连载中 / 已完结
	CategoryID    *int           `json:"category_id" db:"category_id"`
	Genres        []Genre        `json:"genres" gorm:"many2many:series_genres"`
	Seasons       []Season       `json:"seasons,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at" gorm:"index"`
}

// Season 季
type Season struct {
	ID       int       `json:"id" db:"id"`
	SeriesID int       `json:"series_id" db:"series_id" gorm:"index;uniqueIndex:idx_series_season"`
	Number   int       `json:"number" db:"number" gorm:"uniqueIndex:idx_series_season"`
	Title    string    `json:"title" db:"title"`
	Poster   string    `json:"poster" db:"poster"`
	AirDate  string    `json:"air_date" db:"air_date"`
	Episodes []Episode `json:"episodes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Episode 集
type Episode struct {
	ID       int     `json:"id" db:"id"`
	SeasonID int     `json:"season_id" db:"season_id" gorm:"index;uniqueIndex:idx_season_episode"`
	Number   int     `json:"number" db:"number" gorm:"uniqueIndex:idx_season_episode"`
	Title    string  `json:"title" db:"title"`
	Overview string  `json:"overview" db:"overview"`
	Still    string  `json:"still" db:"still"`
	Runtime  int     `json:"runtime" db:"runtime"` // 分钟
	Videos   []Video `json:"videos,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Video 播放源，挂在电影或单集下（二选一）
type Video struct {
	ID        int       `json:"id" db:"id"`
	MovieID   *int      `json:"movie_id" db:"movie_id" gorm:"index"`
	EpisodeID *int      `json:"episode_id" db:"episode_id" gorm:"index"`
	Source    string    `json:"source" db:"source"`   // 来源站点简称
	Quality   string    `json:"quality" db:"quality"` // 如 1080p
	URL       string    `json:"url" db:"url"`         // m3u8 链接
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
