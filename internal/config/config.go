package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env           string
	AppSecret     string
	DatabaseURL   string
	RedisAddr     string // 为空则禁用限流
	Port          string
	SiteName      string
	SiteUrl       string
	SessionExpiry time.Duration // 会话与身份令牌有效期
	SessionLimit  int           // 单用户最大并发会话数
	ResetTokenTTL time.Duration // 重置令牌激活后的有效期
	TMDBApiKey    string
	TMDBBaseURL   string
	TMDBImageURL  string
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("SESSION_EXPIRY_HOURS", "168")) // 7 天
	sessionLimit, _ := strconv.Atoi(getEnv("SESSION_LIMIT", "4"))
	resetMinutes, _ := strconv.Atoi(getEnv("RESET_TOKEN_TTL_MINUTES", "5"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "vidora")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		AppSecret:     appSecret,
		DatabaseURL:   dbURL,
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		Port:          getEnv("PORT", "5005"),
		SiteName:      getEnv("SITE_NAME", "Vidora"),
		SiteUrl:       getEnv("SITE_URL", "http://localhost:5005"),
		SessionExpiry: time.Duration(expiryHours) * time.Hour,
		SessionLimit:  sessionLimit,
		ResetTokenTTL: time.Duration(resetMinutes) * time.Minute,
		TMDBApiKey:    getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageURL:  getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p"),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
