package repository

import (
	"fmt"
	"log"
	"time"

	"github.com/user/vidora/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并自动建表
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Migrate 自动迁移所有模型
func Migrate(db *gorm.DB) error {
	log.Println("[DB] 开始自动迁移...")
	return db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.PasswordReset{},
		&model.Genre{},
		&model.Category{},
		&model.Movie{},
		&model.Series{},
		&model.Season{},
		&model.Episode{},
		&model.Video{},
		&model.Like{},
		&model.WatchlistEntry{},
		&model.WatchHistory{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB            *gorm.DB
	User          *UserRepository
	Session       *SessionRepository
	PasswordReset *PasswordResetRepository
	Movie         *MovieRepository
	Series        *SeriesRepository
	Genre         *GenreRepository
	Category      *CategoryRepository
	Video         *VideoRepository
	Like          *LikeRepository
	Watchlist     *WatchlistRepository
	History       *HistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:            db,
		User:          NewUserRepository(db),
		Session:       NewSessionRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		Movie:         NewMovieRepository(db),
		Series:        NewSeriesRepository(db),
		Genre:         NewGenreRepository(db),
		Category:      NewCategoryRepository(db),
		Video:         NewVideoRepository(db),
		Like:          NewLikeRepository(db),
		Watchlist:     NewWatchlistRepository(db),
		History:       NewHistoryRepository(db),
	}
}
