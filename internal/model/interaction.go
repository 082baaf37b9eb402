package model

import (
	"time"
)

// 互动记录的媒体类型取值
const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
)

// Like 点赞
type Like struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_like"`
	MediaType string    `json:"media_type" db:"media_type" gorm:"uniqueIndex:idx_user_like"`
	MediaID   int       `json:"media_id" db:"media_id" gorm:"uniqueIndex:idx_user_like"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"-"` // 关联查询时填充
	Series    *Series   `json:"series,omitempty" gorm:"-"`
}

// WatchlistEntry 想看清单
type WatchlistEntry struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_watchlist"`
	MediaType string    `json:"media_type" db:"media_type" gorm:"uniqueIndex:idx_user_watchlist"`
	MediaID   int       `json:"media_id" db:"media_id" gorm:"uniqueIndex:idx_user_watchlist"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"-"`
	Series    *Series   `json:"series,omitempty" gorm:"-"`
}

// WatchHistory 观影历史
type WatchHistory struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_history"`
	MediaType string    `json:"media_type" db:"media_type" gorm:"uniqueIndex:idx_user_history"`
	MediaID   int       `json:"media_id" db:"media_id" gorm:"uniqueIndex:idx_user_history"`
	EpisodeID int       `json:"episode_id" db:"episode_id" gorm:"uniqueIndex:idx_user_history"` // 0 表示整部（电影或未细分到集）
	Title     string    `json:"title" db:"title"`
	Poster    string    `json:"poster" db:"poster"`
	Progress  int       `json:"progress" db:"progress"` // 百分比
	LastTime  float64   `json:"last_time" db:"last_time"`
	Duration  float64   `json:"duration" db:"duration"`
	Source    string    `json:"source" db:"source"`
	WatchedAt time.Time `json:"watched_at" db:"watched_at" gorm:"index"`
}
